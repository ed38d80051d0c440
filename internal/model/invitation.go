package model

import (
	"time"

	"github.com/google/uuid"
)

// Invitation is a single-use code that grants entry to a circle. Codes are
// unique across the whole table, not just per circle.
type Invitation struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	Code       string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	IssuedByID uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	CircleID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	Used       bool       `gorm:"not null;default:false" json:"used"`
	UsedByID   *uuid.UUID `gorm:"type:uuid" json:"-"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"-"`

	IssuedBy User   `gorm:"foreignKey:IssuedByID" json:"-"`
	Circle   Circle `gorm:"foreignKey:CircleID" json:"-"`
}

func (Invitation) TableName() string { return "invitations" }
