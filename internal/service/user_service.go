package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"comparteride/api/internal/model"
	"comparteride/api/internal/repository"
	"comparteride/api/internal/worker"
	"comparteride/api/pkg/crypto"
	jwtpkg "comparteride/api/pkg/jwt"
)

var phoneRegex = regexp.MustCompile(`^\+?1?\d{9,15}$`)

type SignUpInput struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
	FirstName            string
	LastName             string
	PhoneNumber          string
}

type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

type UpdateProfileInput struct {
	Picture   *string
	Biography *string
}

// UserDetail is the retrieve payload: the account plus the circles where it
// holds an active membership.
type UserDetail struct {
	User    *model.User    `json:"user"`
	Circles []model.Circle `json:"circles"`
}

type UserService interface {
	SignUp(ctx context.Context, input SignUpInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Verify(ctx context.Context, token string) error
	Get(ctx context.Context, username string) (*UserDetail, error)
	Update(ctx context.Context, userID uuid.UUID, username string, input UpdateUserInput) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, username string, input UpdateProfileInput) (*model.User, error)
}

type userService struct {
	userRepo   repository.UserRepository
	queue      worker.Queue
	jwtManager *jwtpkg.Manager
	logger     *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	queue worker.Queue,
	jwtManager *jwtpkg.Manager,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo:   userRepo,
		queue:      queue,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

func (s *userService) SignUp(ctx context.Context, input SignUpInput) (*model.User, error) {
	if input.Password != input.PasswordConfirmation {
		return nil, ErrPasswordMismatch
	}
	if input.PhoneNumber != "" && !phoneRegex.MatchString(input.PhoneNumber) {
		return nil, ErrInvalidPhone
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: hash,
		IsClient:     true,
	}
	profile := &model.Profile{}
	if err := s.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.Profile = profile

	// Verification email goes through the queue so signup never waits on SMTP.
	job, err := worker.NewJob(worker.JobSendConfirmationEmail, worker.ConfirmationEmailPayload{UserID: user.ID})
	if err == nil {
		err = s.queue.Enqueue(ctx, job)
	}
	if err != nil {
		s.logger.Error("failed to enqueue confirmation email",
			zap.String("username", user.Username),
			zap.Error(err))
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if !crypto.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, "", ErrUserNotVerified
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}
	return user, token, nil
}

func (s *userService) Verify(ctx context.Context, token string) error {
	claims, err := s.jwtManager.Validate(token)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.TokenType != jwtpkg.TokenTypeEmailConfirmation {
		return ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ErrInvalidToken
	}
	if err := s.userRepo.MarkVerified(ctx, userID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

func (s *userService) Get(ctx context.Context, username string) (*UserDetail, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	circles, err := s.userRepo.ListCircles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list user circles: %w", err)
	}
	return &UserDetail{User: user, Circles: circles}, nil
}

func (s *userService) Update(ctx context.Context, userID uuid.UUID, username string, input UpdateUserInput) (*model.User, error) {
	user, err := s.ownedUser(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		if *input.PhoneNumber != "" && !phoneRegex.MatchString(*input.PhoneNumber) {
			return nil, ErrInvalidPhone
		}
		user.PhoneNumber = *input.PhoneNumber
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, username string, input UpdateProfileInput) (*model.User, error) {
	user, err := s.ownedUser(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	if input.Picture != nil {
		user.Profile.Picture = *input.Picture
	}
	if input.Biography != nil {
		user.Profile.Biography = *input.Biography
	}

	if err := s.userRepo.UpdateProfile(ctx, user.Profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ownedUser loads the user by username and verifies it is the requester's own
// account.
func (s *userService) ownedUser(ctx context.Context, userID uuid.UUID, username string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.ID != userID {
		return nil, ErrNotAccountOwner
	}
	return user, nil
}
