package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Membership ties a user to a circle. It is the unit of authorization inside
// a circle: admin-ness and active-ness live here, along with the invitation
// quota and per-circle ride stats.
type Membership struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null" json:"-"`
	CircleID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	IsAdmin bool `gorm:"not null;default:false" json:"is_admin"`

	// Members are never hard-deleted, only deactivated.
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	UsedInvitations      uint       `gorm:"not null;default:0" json:"used_invitations"`
	RemainingInvitations uint       `gorm:"not null;default:0" json:"remaining_invitations"`
	InvitedByID          *uuid.UUID `gorm:"type:uuid" json:"-"`

	RidesOffered uint `gorm:"not null;default:0" json:"rides_offered"`
	RidesTaken   uint `gorm:"not null;default:0" json:"rides_taken"`

	JoinedAt  time.Time      `gorm:"not null;autoCreateTime" json:"joined_at"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User    User    `gorm:"foreignKey:UserID" json:"user"`
	Profile Profile `gorm:"foreignKey:ProfileID" json:"profile"`
	Circle  Circle  `gorm:"foreignKey:CircleID" json:"-"`
}

func (Membership) TableName() string { return "memberships" }
