package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ride is an offered trip with fixed seats, departure/arrival times and a
// passenger set. Once deactivated (arrival reached or swept by the periodic
// job) a ride is immutable.
type Ride struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OfferedByID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	OfferedInID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	Comments string `gorm:"type:varchar(255)" json:"comments"`

	DepartureLocation string `gorm:"type:varchar(255);not null" json:"departure_location"`
	ArrivalLocation   string `gorm:"type:varchar(255);not null" json:"arrival_location"`

	DepartureDate  time.Time `gorm:"not null;index" json:"departure_date"`
	ArrivalDate    time.Time `gorm:"not null;index" json:"arrival_date"`
	AvailableSeats uint      `gorm:"not null;default:1" json:"available_seats"`

	Rating *float64 `json:"rating,omitempty"`

	IsActive bool `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OfferedBy  User   `gorm:"foreignKey:OfferedByID" json:"offered_by"`
	OfferedIn  Circle `gorm:"foreignKey:OfferedInID" json:"-"`
	Passengers []User `gorm:"many2many:ride_passengers" json:"passengers,omitempty"`
}

func (Ride) TableName() string { return "rides" }
