package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"comparteride/api/internal/model"
	"comparteride/api/internal/repository"
)

// CreatorQuota is the default number of invitations a circle creator starts
// with, used when the configured quota is zero.
const CreatorQuota = 10

const (
	minMembersLimit = 10
	maxMembersLimit = 32000
)

type CreateCircleInput struct {
	Name         string
	SlugName     string
	About        string
	IsLimited    bool
	MembersLimit uint
}

type UpdateCircleInput struct {
	Name         *string
	About        *string
	IsLimited    *bool
	MembersLimit *uint
}

type CircleService interface {
	ListPublic(ctx context.Context) ([]model.Circle, error)
	Create(ctx context.Context, creatorID uuid.UUID, input CreateCircleInput) (*model.Circle, error)
	Get(ctx context.Context, slug string) (*model.Circle, error)
	// Update applies an admin-only partial update. is_public, verified and the
	// ride counters are read-only.
	Update(ctx context.Context, userID uuid.UUID, slug string, input UpdateCircleInput) (*model.Circle, error)
}

type circleService struct {
	circleRepo     repository.CircleRepository
	membershipRepo repository.MembershipRepository
	userRepo       repository.UserRepository
	creatorQuota   uint
}

func NewCircleService(
	circleRepo repository.CircleRepository,
	membershipRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
	creatorQuota uint,
) CircleService {
	if creatorQuota == 0 {
		creatorQuota = CreatorQuota
	}
	return &circleService{
		circleRepo:     circleRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		creatorQuota:   creatorQuota,
	}
}

func (s *circleService) ListPublic(ctx context.Context) ([]model.Circle, error) {
	return s.circleRepo.ListPublic(ctx)
}

func (s *circleService) Create(ctx context.Context, creatorID uuid.UUID, input CreateCircleInput) (*model.Circle, error) {
	if err := validateLimit(input.IsLimited, input.MembersLimit); err != nil {
		return nil, err
	}

	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	circle := &model.Circle{
		Name:         input.Name,
		SlugName:     input.SlugName,
		About:        input.About,
		IsPublic:     true,
		IsLimited:    input.IsLimited,
		MembersLimit: input.MembersLimit,
	}
	admin := &model.Membership{
		UserID:               creator.ID,
		ProfileID:            creator.Profile.ID,
		IsAdmin:              true,
		IsActive:             true,
		RemainingInvitations: s.creatorQuota,
	}
	if err := s.circleRepo.CreateWithAdmin(ctx, circle, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create circle: %w", err)
	}
	return circle, nil
}

func (s *circleService) Get(ctx context.Context, slug string) (*model.Circle, error) {
	circle, err := s.circleRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}
	return circle, nil
}

func (s *circleService) Update(ctx context.Context, userID uuid.UUID, slug string, input UpdateCircleInput) (*model.Circle, error) {
	circle, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.RequireCircleAdmin(ctx, circle.ID, userID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		circle.Name = *input.Name
	}
	if input.About != nil {
		circle.About = *input.About
	}
	if input.IsLimited != nil {
		circle.IsLimited = *input.IsLimited
	}
	if input.MembersLimit != nil {
		circle.MembersLimit = *input.MembersLimit
	}
	if err := validateLimit(circle.IsLimited, circle.MembersLimit); err != nil {
		return nil, err
	}

	if err := s.circleRepo.Update(ctx, circle); err != nil {
		return nil, fmt.Errorf("update circle: %w", err)
	}
	return circle, nil
}

// RequireCircleAdmin allows the operation only when the user holds an active
// admin membership in the circle.
func (s *circleService) RequireCircleAdmin(ctx context.Context, circleID, userID uuid.UUID) error {
	m, err := s.membershipRepo.GetActive(ctx, circleID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotCircleAdmin
		}
		return err
	}
	if !m.IsAdmin {
		return ErrNotCircleAdmin
	}
	return nil
}

// validateLimit enforces the is_limited/members_limit pairing: either both are
// set or neither is.
func validateLimit(isLimited bool, membersLimit uint) error {
	if isLimited != (membersLimit > 0) {
		return ErrLimitMismatch
	}
	if isLimited && (membersLimit < minMembersLimit || membersLimit > maxMembersLimit) {
		return fmt.Errorf("%w: members limit must be between %d and %d", ErrLimitMismatch, minMembersLimit, maxMembersLimit)
	}
	return nil
}
