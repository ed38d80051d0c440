package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"comparteride/api/internal/model"
	"comparteride/api/internal/repository"
)

// MinLeadTime is the default minimum interval before departure required to
// offer or join a ride, used when the configured lead time is zero.
const MinLeadTime = 10 * time.Minute

const (
	minSeats = 1
	maxSeats = 15
)

type OfferRideInput struct {
	// OfferedBy, when set, must match the requester's username; rides cannot
	// be offered on someone else's behalf.
	OfferedBy         string
	Comments          string
	DepartureLocation string
	ArrivalLocation   string
	DepartureDate     time.Time
	ArrivalDate       time.Time
	AvailableSeats    uint
}

type UpdateRideInput struct {
	Comments          *string
	DepartureLocation *string
	ArrivalLocation   *string
	DepartureDate     *time.Time
	ArrivalDate       *time.Time
	AvailableSeats    *uint
}

type ListRidesQuery struct {
	Search   string
	Ordering string
}

var rideOrderings = map[string]string{
	"departure_date":   "departure_date ASC",
	"-departure_date":  "departure_date DESC",
	"arrival_date":     "arrival_date ASC",
	"-arrival_date":    "arrival_date DESC",
	"available_seats":  "available_seats ASC",
	"-available_seats": "available_seats DESC",
}

type RideService interface {
	Offer(ctx context.Context, userID uuid.UUID, slug string, input OfferRideInput) (*model.Ride, error)
	List(ctx context.Context, userID uuid.UUID, slug string, query ListRidesQuery) ([]model.Ride, error)
	Update(ctx context.Context, userID uuid.UUID, slug string, rideID uuid.UUID, input UpdateRideInput) (*model.Ride, error)
	Join(ctx context.Context, userID uuid.UUID, slug string, rideID uuid.UUID) (*model.Ride, error)
	Rate(ctx context.Context, userID uuid.UUID, slug string, rideID uuid.UUID, score uint) (*model.Ride, error)
}

type rideService struct {
	circleRepo     repository.CircleRepository
	membershipRepo repository.MembershipRepository
	rideRepo       repository.RideRepository
	userRepo       repository.UserRepository
	minLeadTime    time.Duration
	now            func() time.Time
}

func NewRideService(
	circleRepo repository.CircleRepository,
	membershipRepo repository.MembershipRepository,
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	minLeadTime time.Duration,
) RideService {
	if minLeadTime <= 0 {
		minLeadTime = MinLeadTime
	}
	return &rideService{
		circleRepo:     circleRepo,
		membershipRepo: membershipRepo,
		rideRepo:       rideRepo,
		userRepo:       userRepo,
		minLeadTime:    minLeadTime,
		now:            time.Now,
	}
}

func (s *rideService) Offer(ctx context.Context, userID uuid.UUID, slug string, input OfferRideInput) (*model.Ride, error) {
	circle, err := s.circle(ctx, slug)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Precondition order matters: identity, lead time, membership, schedule.
	if input.OfferedBy != "" && input.OfferedBy != user.Username {
		return nil, ErrOfferOnBehalf
	}
	if input.DepartureDate.Before(s.now().Add(s.minLeadTime)) {
		return nil, ErrDepartureTooSoon
	}
	membership, err := s.membershipRepo.GetActive(ctx, circle.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotCircleMember
		}
		return nil, err
	}
	if !input.ArrivalDate.After(input.DepartureDate) {
		return nil, ErrInvalidSchedule
	}
	if input.AvailableSeats < minSeats || input.AvailableSeats > maxSeats {
		return nil, ErrInvalidSeats
	}

	ride := &model.Ride{
		OfferedByID:       userID,
		OfferedInID:       circle.ID,
		Comments:          input.Comments,
		DepartureLocation: input.DepartureLocation,
		ArrivalLocation:   input.ArrivalLocation,
		DepartureDate:     input.DepartureDate,
		ArrivalDate:       input.ArrivalDate,
		AvailableSeats:    input.AvailableSeats,
		IsActive:          true,
	}
	if err := s.rideRepo.CreateWithStats(ctx, ride, membership.ID); err != nil {
		return nil, fmt.Errorf("offer ride: %w", err)
	}
	ride.OfferedBy = *user
	return ride, nil
}

func (s *rideService) List(ctx context.Context, userID uuid.UUID, slug string, query ListRidesQuery) ([]model.Ride, error) {
	circle, err := s.circle(ctx, slug)
	if err != nil {
		return nil, err
	}
	if _, err := s.membershipRepo.GetActive(ctx, circle.ID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotCircleMember
		}
		return nil, err
	}

	orderBy := ""
	if query.Ordering != "" {
		var ok bool
		if orderBy, ok = rideOrderings[query.Ordering]; !ok {
			return nil, ErrInvalidOrdering
		}
	}

	return s.rideRepo.List(ctx, circle.ID, repository.RideFilter{
		MinDeparture: s.now().Add(s.minLeadTime),
		Search:       query.Search,
		OrderBy:      orderBy,
	})
}

func (s *rideService) Update(ctx context.Context, userID uuid.UUID, slug string, rideID uuid.UUID, input UpdateRideInput) (*model.Ride, error) {
	circle, err := s.circle(ctx, slug)
	if err != nil {
		return nil, err
	}
	ride, err := s.ride(ctx, circle.ID, rideID)
	if err != nil {
		return nil, err
	}

	if ride.OfferedByID != userID {
		return nil, ErrNotRideOwner
	}
	if !ride.IsActive {
		return nil, ErrRideInactive
	}
	if !ride.DepartureDate.After(s.now()) {
		return nil, ErrRideStarted
	}

	if input.Comments != nil {
		ride.Comments = *input.Comments
	}
	if input.DepartureLocation != nil {
		ride.DepartureLocation = *input.DepartureLocation
	}
	if input.ArrivalLocation != nil {
		ride.ArrivalLocation = *input.ArrivalLocation
	}
	if input.DepartureDate != nil {
		ride.DepartureDate = *input.DepartureDate
	}
	if input.ArrivalDate != nil {
		ride.ArrivalDate = *input.ArrivalDate
	}
	if input.AvailableSeats != nil {
		if *input.AvailableSeats > maxSeats {
			return nil, ErrInvalidSeats
		}
		ride.AvailableSeats = *input.AvailableSeats
	}

	if ride.DepartureDate.Before(s.now().Add(s.minLeadTime)) {
		return nil, ErrDepartureTooSoon
	}
	if !ride.ArrivalDate.After(ride.DepartureDate) {
		return nil, ErrInvalidSchedule
	}

	// The repository re-checks is_active under a row lock; the sweep may have
	// closed the ride since the read above.
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		switch {
		case errors.Is(err, repository.ErrRideInactive):
			return nil, ErrRideInactive
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("update ride: %w", err)
	}
	return ride, nil
}

func (s *rideService) Join(ctx context.Context, userID uuid.UUID, slug string, rideID uuid.UUID) (*model.Ride, error) {
	circle, err := s.circle(ctx, slug)
	if err != nil {
		return nil, err
	}
	membership, err := s.membershipRepo.GetActive(ctx, circle.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotCircleMember
		}
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ride, err := s.ride(ctx, circle.ID, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DepartureDate.Before(s.now().Add(s.minLeadTime)) {
		return nil, ErrDepartureTooSoon
	}

	// The repository re-checks is_active and seats under a row lock; the
	// periodic sweep may have closed the ride since the read above.
	joined, err := s.rideRepo.AddPassenger(ctx, rideID, user, membership.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRideInactive):
			return nil, ErrRideInactive
		case errors.Is(err, repository.ErrRideFull):
			return nil, ErrRideFull
		case errors.Is(err, repository.ErrAlreadyPassenger):
			return nil, ErrAlreadyPassenger
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("join ride: %w", err)
	}
	return joined, nil
}

func (s *rideService) Rate(ctx context.Context, userID uuid.UUID, slug string, rideID uuid.UUID, score uint) (*model.Ride, error) {
	if score < 1 || score > 5 {
		return nil, ErrInvalidRating
	}
	circle, err := s.circle(ctx, slug)
	if err != nil {
		return nil, err
	}
	if _, err := s.membershipRepo.GetActive(ctx, circle.ID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotCircleMember
		}
		return nil, err
	}

	ride, err := s.ride(ctx, circle.ID, rideID)
	if err != nil {
		return nil, err
	}
	if ride.ArrivalDate.After(s.now()) {
		return nil, ErrRideNotFinished
	}
	isPassenger, err := s.rideRepo.IsPassenger(ctx, rideID, userID)
	if err != nil {
		return nil, err
	}
	if !isPassenger {
		return nil, ErrNotPassenger
	}

	rating := &model.Rating{
		RideID:     rideID,
		CircleID:   circle.ID,
		RatingUser: userID,
		RatedUser:  ride.OfferedByID,
		Score:      score,
	}
	mean, err := s.rideRepo.CreateRating(ctx, rating)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRated) {
			return nil, ErrAlreadyRated
		}
		return nil, fmt.Errorf("rate ride: %w", err)
	}
	ride.Rating = &mean
	return ride, nil
}

func (s *rideService) circle(ctx context.Context, slug string) (*model.Circle, error) {
	circle, err := s.circleRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}
	return circle, nil
}

func (s *rideService) ride(ctx context.Context, circleID, rideID uuid.UUID) (*model.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, circleID, rideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return ride, nil
}
