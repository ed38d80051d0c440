package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile holds public-facing data and ride stats aggregated across circles.
type Profile struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	Picture      string         `gorm:"type:varchar(512)" json:"picture"`
	Biography    string         `gorm:"type:varchar(500)" json:"biography"`
	Reputation   float64        `gorm:"not null;default:5.0" json:"reputation"`
	RidesOffered uint           `gorm:"not null;default:0" json:"rides_offered"`
	RidesTaken   uint           `gorm:"not null;default:0" json:"rides_taken"`
	CreatedAt    time.Time      `json:"-"`
	UpdatedAt    time.Time      `json:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string { return "profiles" }
