package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"comparteride/api/internal/model"
	"comparteride/api/internal/repository"
)

// InvitationBreakdown is the member-invitations payload: members brought in by
// this member, plus the member's unused codes topped up to its quota.
type InvitationBreakdown struct {
	UsedInvitations []model.Membership `json:"used_invitations"`
	Invitations     []string           `json:"invitations"`
}

type MembershipService interface {
	List(ctx context.Context, slug string, requesterID uuid.UUID) ([]model.Membership, error)
	Get(ctx context.Context, slug, username string, requesterID uuid.UUID) (*model.Membership, error)
	// Join redeems an invitation code and adds the requester to the circle.
	Join(ctx context.Context, slug string, userID uuid.UUID, code string) (*model.Membership, error)
	// Deactivate soft-disables a membership; allowed for the member itself or
	// a circle admin. Idempotent.
	Deactivate(ctx context.Context, slug, username string, requesterID uuid.UUID) error
	// Invitations returns the member's invitation breakdown, lazily minting
	// codes up to the remaining quota. Only the member itself may call it.
	Invitations(ctx context.Context, slug, username string, requesterID uuid.UUID) (*InvitationBreakdown, error)
}

type membershipService struct {
	circleRepo     repository.CircleRepository
	membershipRepo repository.MembershipRepository
	invitationRepo repository.InvitationRepository
	userRepo       repository.UserRepository
}

func NewMembershipService(
	circleRepo repository.CircleRepository,
	membershipRepo repository.MembershipRepository,
	invitationRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
) MembershipService {
	return &membershipService{
		circleRepo:     circleRepo,
		membershipRepo: membershipRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
	}
}

func (s *membershipService) List(ctx context.Context, slug string, requesterID uuid.UUID) ([]model.Membership, error) {
	circle, err := s.circle(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveMember(ctx, circle.ID, requesterID); err != nil {
		return nil, err
	}
	return s.membershipRepo.ListActive(ctx, circle.ID)
}

func (s *membershipService) Get(ctx context.Context, slug, username string, requesterID uuid.UUID) (*model.Membership, error) {
	circle, err := s.circle(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveMember(ctx, circle.ID, requesterID); err != nil {
		return nil, err
	}
	return s.activeMember(ctx, circle.ID, username)
}

func (s *membershipService) Join(ctx context.Context, slug string, userID uuid.UUID, code string) (*model.Membership, error) {
	circle, err := s.circle(ctx, slug)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	membership := &model.Membership{
		UserID:    user.ID,
		ProfileID: user.Profile.ID,
		CircleID:  circle.ID,
		IsActive:  true,
	}
	var limit uint
	if circle.IsLimited {
		limit = circle.MembersLimit
	}
	if err := s.membershipRepo.JoinWithInvitation(ctx, membership, code, limit); err != nil {
		switch {
		case errors.Is(err, repository.ErrInvitationInvalid):
			return nil, ErrInvitationInvalid
		case errors.Is(err, repository.ErrCircleFull):
			return nil, ErrCircleFull
		case errors.Is(err, repository.ErrAlreadyMember):
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("join circle: %w", err)
	}
	membership.User = *user
	return membership, nil
}

func (s *membershipService) Deactivate(ctx context.Context, slug, username string, requesterID uuid.UUID) error {
	circle, err := s.circle(ctx, slug)
	if err != nil {
		return err
	}
	requester, err := s.membershipRepo.GetActive(ctx, circle.ID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotCircleMember
		}
		return err
	}

	member, err := s.activeMember(ctx, circle.ID, username)
	if err != nil {
		// Lookup treats inactive members as gone, so a repeated deactivation
		// resolves to not-found rather than an error state.
		return err
	}

	if member.UserID != requesterID && !requester.IsAdmin {
		return ErrNotCircleAdmin
	}
	return s.membershipRepo.Deactivate(ctx, member.ID)
}

func (s *membershipService) Invitations(ctx context.Context, slug, username string, requesterID uuid.UUID) (*InvitationBreakdown, error) {
	circle, err := s.circle(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveMember(ctx, circle.ID, requesterID); err != nil {
		return nil, err
	}

	member, err := s.activeMember(ctx, circle.ID, username)
	if err != nil {
		return nil, err
	}
	if member.UserID != requesterID {
		return nil, ErrNotMembershipOwner
	}

	used, err := s.membershipRepo.ListActiveInvitedBy(ctx, circle.ID, member.UserID)
	if err != nil {
		return nil, fmt.Errorf("list invited members: %w", err)
	}
	codes, err := s.invitationRepo.TopUpUnused(ctx, member.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCodeSpaceExhausted) {
			return nil, ErrCodeSpaceExhausted
		}
		return nil, fmt.Errorf("top up invitations: %w", err)
	}

	return &InvitationBreakdown{
		UsedInvitations: used,
		Invitations:     codes,
	}, nil
}

func (s *membershipService) circle(ctx context.Context, slug string) (*model.Circle, error) {
	circle, err := s.circleRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}
	return circle, nil
}

func (s *membershipService) activeMember(ctx context.Context, circleID uuid.UUID, username string) (*model.Membership, error) {
	member, err := s.membershipRepo.GetActiveByUsername(ctx, circleID, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

func (s *membershipService) requireActiveMember(ctx context.Context, circleID, userID uuid.UUID) error {
	_, err := s.membershipRepo.GetActive(ctx, circleID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotCircleMember
		}
		return err
	}
	return nil
}
