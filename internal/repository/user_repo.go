package repository

import (
	"context"

	"github.com/google/uuid"

	"comparteride/api/internal/model"
)

type UserRepository interface {
	// CreateWithProfile persists a new user and its one-to-one profile in a
	// single transaction.
	CreateWithProfile(ctx context.Context, user *model.User, profile *model.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateProfile(ctx context.Context, profile *model.Profile) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	// ListCircles returns the circles where the user holds an active membership.
	ListCircles(ctx context.Context, userID uuid.UUID) ([]model.Circle, error)
}
