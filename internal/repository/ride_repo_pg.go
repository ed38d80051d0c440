package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comparteride/api/internal/model"
)

type pgRideRepository struct {
	db *gorm.DB
}

func NewPGRideRepository(db *gorm.DB) RideRepository {
	return &pgRideRepository{db: db}
}

func (r *pgRideRepository) CreateWithStats(ctx context.Context, ride *model.Ride, membershipID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ride).Error; err != nil {
			return err
		}
		if err := incrementColumn(tx, &model.Circle{}, "id = ?", ride.OfferedInID, "rides_offered"); err != nil {
			return err
		}
		if err := incrementColumn(tx, &model.Membership{}, "id = ?", membershipID, "rides_offered"); err != nil {
			return err
		}
		return incrementColumn(tx, &model.Profile{}, "user_id = ?", ride.OfferedByID, "rides_offered")
	})
}

func (r *pgRideRepository) GetByID(ctx context.Context, circleID, rideID uuid.UUID) (*model.Ride, error) {
	var ride model.Ride
	err := r.db.WithContext(ctx).
		Preload("OfferedBy").
		Preload("Passengers").
		First(&ride, "id = ? AND offered_in_id = ?", rideID, circleID).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &ride, nil
}

// Update persists the mutable ride columns. The row is locked and is_active
// re-checked inside the transaction, so a ride the sweep closed after the
// caller's read is rejected instead of silently re-activated; is_active is
// never written from the loaded struct.
func (r *pgRideRepository) Update(ctx context.Context, ride *model.Ride) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Ride
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, "id = ?", ride.ID).Error
		if err != nil {
			return translateNotFound(err)
		}
		if !current.IsActive {
			return ErrRideInactive
		}
		return tx.Model(&model.Ride{}).
			Where("id = ?", ride.ID).
			Updates(map[string]interface{}{
				"comments":           ride.Comments,
				"departure_location": ride.DepartureLocation,
				"arrival_location":   ride.ArrivalLocation,
				"departure_date":     ride.DepartureDate,
				"arrival_date":       ride.ArrivalDate,
				"available_seats":    ride.AvailableSeats,
			}).Error
	})
}

func (r *pgRideRepository) List(ctx context.Context, circleID uuid.UUID, filter RideFilter) ([]model.Ride, error) {
	q := r.db.WithContext(ctx).
		Preload("OfferedBy").
		Where("offered_in_id = ? AND is_active AND available_seats >= 1", circleID).
		Where("departure_date >= ?", filter.MinDeparture)

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where(
			"departure_location ILIKE ? OR arrival_location ILIKE ? OR comments ILIKE ?",
			like, like, like,
		)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "departure_date ASC"
	}

	var rides []model.Ride
	if err := q.Order(orderBy).Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}

func (r *pgRideRepository) AddPassenger(ctx context.Context, rideID uuid.UUID, user *model.User, membershipID uuid.UUID) (*model.Ride, error) {
	var ride model.Ride
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the ride so the seat check below holds until commit, and so a
		// concurrent sweep cannot deactivate it mid-join unnoticed.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ride, "id = ?", rideID).Error
		if err != nil {
			return translateNotFound(err)
		}
		if !ride.IsActive {
			return ErrRideInactive
		}
		if ride.AvailableSeats < 1 {
			return ErrRideFull
		}

		var joined int64
		err = tx.Table("ride_passengers").
			Where("ride_id = ? AND user_id = ?", rideID, user.ID).
			Count(&joined).Error
		if err != nil {
			return err
		}
		if joined > 0 {
			return ErrAlreadyPassenger
		}

		if err := tx.Model(&ride).Association("Passengers").Append(user); err != nil {
			return err
		}
		err = tx.Model(&model.Ride{}).
			Where("id = ?", rideID).
			UpdateColumn("available_seats", gorm.Expr("available_seats - 1")).
			Error
		if err != nil {
			return err
		}
		ride.AvailableSeats--

		if err := incrementColumn(tx, &model.Circle{}, "id = ?", ride.OfferedInID, "rides_taken"); err != nil {
			return err
		}
		if err := incrementColumn(tx, &model.Membership{}, "id = ?", membershipID, "rides_taken"); err != nil {
			return err
		}
		return incrementColumn(tx, &model.Profile{}, "user_id = ?", user.ID, "rides_taken")
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, ride.OfferedInID, rideID)
}

func (r *pgRideRepository) IsPassenger(ctx context.Context, rideID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("ride_passengers").
		Where("ride_id = ? AND user_id = ?", rideID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *pgRideRepository) CreateRating(ctx context.Context, rating *model.Rating) (float64, error) {
	var mean float64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ride_id"}, {Name: "rating_user"}},
			DoNothing: true,
		}).Create(rating)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyRated
		}

		err := tx.Model(&model.Rating{}).
			Where("ride_id = ?", rating.RideID).
			Select("AVG(score)").
			Scan(&mean).Error
		if err != nil {
			return err
		}
		return tx.Model(&model.Ride{}).
			Where("id = ?", rating.RideID).
			UpdateColumn("rating", mean).
			Error
	})
	if err != nil {
		return 0, err
	}
	return mean, nil
}

func (r *pgRideRepository) DeactivateArrived(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Ride{}).
		Where("is_active AND arrival_date <= ?", before).
		UpdateColumn("is_active", false)
	return res.RowsAffected, res.Error
}

func incrementColumn(tx *gorm.DB, m interface{}, cond string, arg interface{}, column string) error {
	return tx.Model(m).
		Where(cond, arg).
		UpdateColumn(column, gorm.Expr(column+" + 1")).
		Error
}
