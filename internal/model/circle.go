package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Circle is a private group where rides are offered and taken by its members.
// To join a circle a user must redeem an invitation code issued by an
// existing member.
type Circle struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name     string    `gorm:"type:varchar(140);not null" json:"name"`
	SlugName string    `gorm:"type:varchar(40);uniqueIndex;not null" json:"slug_name"`
	About    string    `gorm:"type:varchar(255)" json:"about"`
	Picture  string    `gorm:"type:varchar(512)" json:"picture"`

	// Stats
	RidesOffered uint `gorm:"not null;default:0" json:"rides_offered"`
	RidesTaken   uint `gorm:"not null;default:0" json:"rides_taken"`

	// Verified circles are also known as official communities.
	Verified bool `gorm:"not null;default:false" json:"verified"`

	// Public circles are listed openly so everyone knows about them.
	IsPublic bool `gorm:"not null;default:true" json:"is_public"`

	// Limited circles can grow up to a fixed number of members.
	IsLimited    bool `gorm:"not null;default:false" json:"is_limited"`
	MembersLimit uint `gorm:"not null;default:0" json:"members_limit"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Circle) TableName() string { return "circles" }
