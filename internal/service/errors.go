package service

import "errors"

var (
	// Users
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotVerified    = errors.New("account is not verified yet")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("a user with that username or email already exists")
	ErrInvalidToken       = errors.New("verification token is invalid or expired")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidPhone       = errors.New("phone number must be in the format +123456789, up to 15 digits")
	ErrNotAccountOwner    = errors.New("users may only modify their own account")

	// Circles
	ErrCircleNotFound     = errors.New("circle not found")
	ErrSlugTaken          = errors.New("circle slug already taken")
	ErrLimitMismatch      = errors.New("if circle is limited, a members limit must be provided")
	ErrNotCircleAdmin     = errors.New("only circle admins may perform this action")
	ErrNotCircleMember    = errors.New("user is not an active member of the circle")
	ErrMemberNotFound     = errors.New("member not found")
	ErrNotMembershipOwner = errors.New("only the member itself may access its invitations")

	// Invitations
	ErrInvitationInvalid  = errors.New("invitation code is invalid or already used")
	ErrCodeSpaceExhausted = errors.New("could not generate a unique invitation code")
	ErrCircleFull         = errors.New("circle has reached its members limit")
	ErrAlreadyMember      = errors.New("user is already a member of the circle")

	// Rides
	ErrRideNotFound     = errors.New("ride not found")
	ErrNotRideOwner     = errors.New("only the ride owner may update it")
	ErrOfferOnBehalf    = errors.New("rides offered on behalf of others are not allowed")
	ErrDepartureTooSoon = errors.New("departure time must be at least 10 minutes in the future")
	ErrInvalidSchedule  = errors.New("arrival date must happen after departure date")
	ErrInvalidSeats     = errors.New("available seats must be between 1 and 15")
	ErrRideInactive     = errors.New("ride is no longer active")
	ErrRideFull         = errors.New("ride is already full")
	ErrAlreadyPassenger = errors.New("user already joined this ride")
	ErrRideStarted      = errors.New("ongoing or finished rides cannot be modified")
	ErrRideNotFinished  = errors.New("ride has not finished yet")
	ErrNotPassenger     = errors.New("only passengers may rate the ride")
	ErrAlreadyRated     = errors.New("ride already rated")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrInvalidOrdering  = errors.New("unsupported ordering field")
)
