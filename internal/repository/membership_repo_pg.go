package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comparteride/api/internal/model"
)

type pgMembershipRepository struct {
	db *gorm.DB
}

func NewPGMembershipRepository(db *gorm.DB) MembershipRepository {
	return &pgMembershipRepository{db: db}
}

func (r *pgMembershipRepository) GetActive(ctx context.Context, circleID, userID uuid.UUID) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ? AND is_active", circleID, userID).
		First(&m).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &m, nil
}

func (r *pgMembershipRepository) GetActiveByUsername(ctx context.Context, circleID uuid.UUID, username string) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Profile").
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.circle_id = ? AND lower(users.username) = lower(?) AND memberships.is_active", circleID, username).
		First(&m).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &m, nil
}

func (r *pgMembershipRepository) ListActive(ctx context.Context, circleID uuid.UUID) ([]model.Membership, error) {
	var members []model.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Profile").
		Where("circle_id = ? AND is_active", circleID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *pgMembershipRepository) ListActiveInvitedBy(ctx context.Context, circleID, inviterID uuid.UUID) ([]model.Membership, error) {
	var members []model.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Profile").
		Where("circle_id = ? AND invited_by_id = ? AND is_active", circleID, inviterID).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *pgMembershipRepository) Deactivate(ctx context.Context, membershipID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Membership{}).
		Where("id = ?", membershipID).
		UpdateColumn("is_active", false).
		Error
}

func (r *pgMembershipRepository) JoinWithInvitation(ctx context.Context, m *model.Membership, code string, membersLimit uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional redemption: exactly one concurrent caller can flip the
		// unused flag for a given code.
		now := time.Now()
		res := tx.Model(&model.Invitation{}).
			Where("code = ? AND circle_id = ? AND NOT used", code, m.CircleID).
			Updates(map[string]interface{}{
				"used":       true,
				"used_by_id": m.UserID,
				"used_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvitationInvalid
		}

		var invitation model.Invitation
		if err := tx.First(&invitation, "code = ?", code).Error; err != nil {
			return err
		}
		m.InvitedByID = &invitation.IssuedByID

		if membersLimit > 0 {
			// Lock the circle row before counting: the count carries no
			// constraint of its own, so without the lock two concurrent joins
			// both see count < limit and both insert.
			var circle model.Circle
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&circle, "id = ?", m.CircleID).Error
			if err != nil {
				return err
			}
			var count int64
			err = tx.Model(&model.Membership{}).
				Where("circle_id = ? AND is_active", m.CircleID).
				Count(&count).Error
			if err != nil {
				return err
			}
			if uint(count) >= membersLimit {
				return ErrCircleFull
			}
		}

		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return err
		}

		// Issuer bookkeeping: one invitation spent.
		return tx.Model(&model.Membership{}).
			Where("circle_id = ? AND user_id = ? AND is_active", m.CircleID, invitation.IssuedByID).
			Updates(map[string]interface{}{
				"used_invitations":      gorm.Expr("used_invitations + 1"),
				"remaining_invitations": gorm.Expr("GREATEST(remaining_invitations - 1, 0)"),
			}).Error
	})
}
