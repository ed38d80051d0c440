package repository

import (
	"context"

	"github.com/google/uuid"

	"comparteride/api/internal/model"
)

type InvitationRepository interface {
	// Create persists a new invitation. Returns ErrDuplicateCode when the code
	// collides with any existing row; the unique index on code is the ultimate
	// backstop against concurrent issuance of the same code.
	Create(ctx context.Context, invitation *model.Invitation) error
	GetByCode(ctx context.Context, code string) (*model.Invitation, error)
	// Redeem marks a code used exactly once via a conditional update. Unknown
	// and already-used codes both return ErrInvitationInvalid.
	Redeem(ctx context.Context, code string, usedBy uuid.UUID) (*model.Invitation, error)
	ListUnusedCodes(ctx context.Context, circleID, issuerID uuid.UUID) ([]string, error)
	// TopUpUnused brings the member's unused code count up to its
	// remaining_invitations quota, minting new codes on demand, and returns
	// the full unused set. The membership row is locked for the duration so
	// concurrent calls can never jointly overshoot the quota.
	TopUpUnused(ctx context.Context, membershipID uuid.UUID) ([]string, error)
}
