package repository

import "errors"

// Storage-level sentinel errors. The _pg implementations translate driver and
// GORM errors into these so services never see gorm internals.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateUser      = errors.New("username or email already taken")
	ErrDuplicateSlug      = errors.New("circle slug already taken")
	ErrDuplicateCode      = errors.New("invitation code already exists")
	ErrCodeSpaceExhausted = errors.New("could not generate a unique invitation code")
	ErrInvitationInvalid  = errors.New("invitation code is invalid or already used")
	ErrCircleFull         = errors.New("circle has reached its members limit")
	ErrAlreadyMember      = errors.New("user is already an active member")
	ErrRideInactive       = errors.New("ride is no longer active")
	ErrRideFull           = errors.New("ride is already full")
	ErrAlreadyPassenger   = errors.New("user is already a passenger")
	ErrAlreadyRated       = errors.New("ride already rated by this user")
)
