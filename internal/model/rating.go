package model

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a passenger's score for a finished ride. One per
// (ride, rating_user); the mean is denormalized onto Ride.Rating.
type Rating struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	RideID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_ratings_ride_user" json:"-"`
	CircleID    uuid.UUID `gorm:"type:uuid;not null" json:"-"`
	RatingUser  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_ride_user" json:"-"`
	RatedUser   uuid.UUID `gorm:"type:uuid;not null" json:"-"`
	Score       uint      `gorm:"not null" json:"score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

func (Rating) TableName() string { return "ratings" }
