package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"comparteride/api/internal/model"
)

type pgCircleRepository struct {
	db *gorm.DB
}

func NewPGCircleRepository(db *gorm.DB) CircleRepository {
	return &pgCircleRepository{db: db}
}

func (r *pgCircleRepository) CreateWithAdmin(ctx context.Context, circle *model.Circle, admin *model.Membership) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(circle).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateSlug
			}
			return err
		}
		admin.CircleID = circle.ID
		return tx.Create(admin).Error
	})
}

func (r *pgCircleRepository) GetBySlug(ctx context.Context, slug string) (*model.Circle, error) {
	var circle model.Circle
	if err := r.db.WithContext(ctx).First(&circle, "slug_name = ?", slug).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &circle, nil
}

func (r *pgCircleRepository) ListPublic(ctx context.Context) ([]model.Circle, error) {
	var circles []model.Circle
	err := r.db.WithContext(ctx).
		Where("is_public").
		Order("rides_taken DESC, rides_offered DESC").
		Find(&circles).Error
	if err != nil {
		return nil, err
	}
	return circles, nil
}

func (r *pgCircleRepository) Update(ctx context.Context, circle *model.Circle) error {
	return r.db.WithContext(ctx).Save(circle).Error
}
