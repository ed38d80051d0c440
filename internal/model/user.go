package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	Username     string         `gorm:"type:varchar(150);not null" json:"username"`
	Email        string         `gorm:"type:varchar(254);not null" json:"email"`
	FirstName    string         `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string         `gorm:"type:varchar(150)" json:"last_name"`
	PhoneNumber  string         `gorm:"type:varchar(17)" json:"phone_number"`
	PasswordHash string         `gorm:"type:varchar(128);not null" json:"-"`
	IsClient     bool           `gorm:"not null;default:true" json:"-"`
	IsVerified   bool           `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string { return "users" }
