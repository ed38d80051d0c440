package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comparteride/api/internal/model"
	"comparteride/api/pkg/crypto"
)

// mintAttempts bounds the generate-and-insert loop. The code space is 62^n
// for length n, so hitting the bound means something is badly wrong with the
// random source.
const mintAttempts = 10

type pgInvitationRepository struct {
	db         *gorm.DB
	codeLength int
}

func NewPGInvitationRepository(db *gorm.DB, codeLength int) InvitationRepository {
	if codeLength <= 0 {
		codeLength = crypto.InviteCodeLength
	}
	return &pgInvitationRepository{db: db, codeLength: codeLength}
}

func (r *pgInvitationRepository) Create(ctx context.Context, invitation *model.Invitation) error {
	if err := r.db.WithContext(ctx).Create(invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *pgInvitationRepository) GetByCode(ctx context.Context, code string) (*model.Invitation, error) {
	var invitation model.Invitation
	if err := r.db.WithContext(ctx).First(&invitation, "code = ?", code).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &invitation, nil
}

func (r *pgInvitationRepository) Redeem(ctx context.Context, code string, usedBy uuid.UUID) (*model.Invitation, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.Invitation{}).
		Where("code = ? AND NOT used", code).
		Updates(map[string]interface{}{
			"used":       true,
			"used_by_id": usedBy,
			"used_at":    now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvitationInvalid
	}
	return r.GetByCode(ctx, code)
}

func (r *pgInvitationRepository) ListUnusedCodes(ctx context.Context, circleID, issuerID uuid.UUID) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&model.Invitation{}).
		Where("circle_id = ? AND issued_by_id = ? AND NOT used", circleID, issuerID).
		Order("created_at ASC").
		Pluck("code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *pgInvitationRepository) TopUpUnused(ctx context.Context, membershipID uuid.UUID) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the membership row so concurrent breakdown reads serialize and
		// the recount below stays valid until commit.
		var m model.Membership
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "id = ?", membershipID).Error
		if err != nil {
			return translateNotFound(err)
		}

		err = tx.Model(&model.Invitation{}).
			Where("circle_id = ? AND issued_by_id = ? AND NOT used", m.CircleID, m.UserID).
			Order("created_at ASC").
			Pluck("code", &codes).Error
		if err != nil {
			return err
		}

		for uint(len(codes)) < m.RemainingInvitations {
			code, err := mintCode(tx, m.UserID, m.CircleID, r.codeLength)
			if err != nil {
				return err
			}
			codes = append(codes, code)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// mintCode inserts a freshly generated invitation, regenerating on the rare
// code collision up to mintAttempts times. The insert uses ON CONFLICT DO
// NOTHING so a collision does not abort the surrounding transaction.
func mintCode(tx *gorm.DB, issuerID, circleID uuid.UUID, codeLength int) (string, error) {
	for i := 0; i < mintAttempts; i++ {
		code, err := crypto.GenerateCode(codeLength)
		if err != nil {
			return "", err
		}
		invitation := &model.Invitation{
			Code:       code,
			IssuedByID: issuerID,
			CircleID:   circleID,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(invitation)
		if res.Error != nil {
			return "", res.Error
		}
		if res.RowsAffected > 0 {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}
