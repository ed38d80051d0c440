package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"comparteride/api/internal/model"
	"comparteride/api/internal/repository"
	"comparteride/api/pkg/crypto"
)

// DefaultIssueAttempts bounds the regenerate-on-collision loop in Issue when
// the configured bound is zero.
const DefaultIssueAttempts = 10

type InvitationService interface {
	// Issue creates an invitation for the circle. The issuer must hold an
	// active membership. When code is non-empty it is tried verbatim; on a
	// collision (or when empty) a fresh random code is generated, retrying a
	// bounded number of times before giving up with ErrCodeSpaceExhausted.
	Issue(ctx context.Context, issuerID uuid.UUID, slug, code string) (*model.Invitation, error)
	// Redeem marks a code used; at most one concurrent caller wins.
	Redeem(ctx context.Context, code string, usedBy uuid.UUID) (*model.Invitation, error)
}

type invitationService struct {
	circleRepo     repository.CircleRepository
	membershipRepo repository.MembershipRepository
	invitationRepo repository.InvitationRepository
	codeLength     int
	issueAttempts  int
}

func NewInvitationService(
	circleRepo repository.CircleRepository,
	membershipRepo repository.MembershipRepository,
	invitationRepo repository.InvitationRepository,
	codeLength int,
	issueAttempts int,
) InvitationService {
	if codeLength <= 0 {
		codeLength = crypto.InviteCodeLength
	}
	if issueAttempts <= 0 {
		issueAttempts = DefaultIssueAttempts
	}
	return &invitationService{
		circleRepo:     circleRepo,
		membershipRepo: membershipRepo,
		invitationRepo: invitationRepo,
		codeLength:     codeLength,
		issueAttempts:  issueAttempts,
	}
}

func (s *invitationService) Issue(ctx context.Context, issuerID uuid.UUID, slug, code string) (*model.Invitation, error) {
	circle, err := s.circleRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}
	if _, err := s.membershipRepo.GetActive(ctx, circle.ID, issuerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotCircleMember
		}
		return nil, err
	}

	for i := 0; i < s.issueAttempts; i++ {
		if code == "" {
			code, err = crypto.GenerateCode(s.codeLength)
			if err != nil {
				return nil, fmt.Errorf("generate invitation code: %w", err)
			}
		}

		invitation := &model.Invitation{
			Code:       code,
			IssuedByID: issuerID,
			CircleID:   circle.ID,
		}
		err = s.invitationRepo.Create(ctx, invitation)
		if err == nil {
			return invitation, nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			return nil, fmt.Errorf("create invitation: %w", err)
		}
		// Collision: drop the candidate (including a caller-supplied one) and
		// try a fresh random code.
		code = ""
	}
	return nil, ErrCodeSpaceExhausted
}

func (s *invitationService) Redeem(ctx context.Context, code string, usedBy uuid.UUID) (*model.Invitation, error) {
	invitation, err := s.invitationRepo.Redeem(ctx, code, usedBy)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationInvalid) {
			return nil, ErrInvitationInvalid
		}
		return nil, err
	}
	return invitation, nil
}
