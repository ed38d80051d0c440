package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"comparteride/api/internal/model"
)

// RideFilter narrows and orders the open-rides listing. OrderBy must be one
// of the whitelisted column expressions validated by the service layer.
type RideFilter struct {
	MinDeparture time.Time
	Search       string
	OrderBy      string
}

type RideRepository interface {
	// CreateWithStats persists the ride and increments the rides_offered
	// counters on the circle, the offering membership and the offerer's
	// profile, all in one transaction.
	CreateWithStats(ctx context.Context, ride *model.Ride, membershipID uuid.UUID) error
	GetByID(ctx context.Context, circleID, rideID uuid.UUID) (*model.Ride, error)
	Update(ctx context.Context, ride *model.Ride) error
	List(ctx context.Context, circleID uuid.UUID, filter RideFilter) ([]model.Ride, error)
	// AddPassenger locks the ride row, re-validates is_active and seat
	// availability at the moment of mutation, rejects duplicate passengers,
	// then adds the passenger, decrements available_seats and increments the
	// three rides_taken counters. All-or-nothing.
	AddPassenger(ctx context.Context, rideID uuid.UUID, user *model.User, membershipID uuid.UUID) (*model.Ride, error)
	IsPassenger(ctx context.Context, rideID, userID uuid.UUID) (bool, error)
	// CreateRating stores a passenger's score (one per rider) and refreshes
	// the denormalized mean on the ride. Returns the new mean.
	CreateRating(ctx context.Context, rating *model.Rating) (float64, error)
	// DeactivateArrived flips is_active off for rides whose arrival date has
	// passed. Used by the periodic sweep; returns the number of rides closed.
	DeactivateArrived(ctx context.Context, before time.Time) (int64, error)
}
