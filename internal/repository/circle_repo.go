package repository

import (
	"context"

	"comparteride/api/internal/model"
)

type CircleRepository interface {
	// CreateWithAdmin persists the circle and its creator's admin membership
	// in a single transaction.
	CreateWithAdmin(ctx context.Context, circle *model.Circle, admin *model.Membership) error
	GetBySlug(ctx context.Context, slug string) (*model.Circle, error)
	ListPublic(ctx context.Context) ([]model.Circle, error)
	Update(ctx context.Context, circle *model.Circle) error
}
