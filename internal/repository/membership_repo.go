package repository

import (
	"context"

	"github.com/google/uuid"

	"comparteride/api/internal/model"
)

type MembershipRepository interface {
	GetActive(ctx context.Context, circleID, userID uuid.UUID) (*model.Membership, error)
	GetActiveByUsername(ctx context.Context, circleID uuid.UUID, username string) (*model.Membership, error)
	ListActive(ctx context.Context, circleID uuid.UUID) ([]model.Membership, error)
	// ListActiveInvitedBy returns the active members a given user brought into
	// the circle.
	ListActiveInvitedBy(ctx context.Context, circleID, inviterID uuid.UUID) ([]model.Membership, error)
	// Deactivate soft-disables a membership. Deactivating twice is a no-op.
	Deactivate(ctx context.Context, membershipID uuid.UUID) error
	// JoinWithInvitation redeems the invitation code and creates the new
	// membership in one transaction: the redemption is a conditional update
	// (exactly one winner per code), the circle's member limit is enforced
	// against the live active-member count, and the issuer's invitation
	// counters are adjusted. membersLimit of zero means unlimited.
	JoinWithInvitation(ctx context.Context, m *model.Membership, code string, membersLimit uint) error
}
