package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/amarthakur0/go-api-template/internal/apperr"
	"github.com/amarthakur0/go-api-template/internal/domain"
	"github.com/amarthakur0/go-api-template/internal/repository"
)

// UserService manages user accounts. All client-facing failures come back as
// classified apperr errors so handlers only translate, never decide.
type UserService struct {
	userRepo repository.UserRepository
	mailer   Mailer
	logger   *zap.Logger
	bcrypt   int
}

// NewUserService creates the user service.
func NewUserService(userRepo repository.UserRepository, mailer Mailer, logger *zap.Logger, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		userRepo: userRepo,
		mailer:   mailer,
		logger:   logger,
		bcrypt:   bcryptCost,
	}
}

// CreateUserInput is the validated payload for account creation.
type CreateUserInput struct {
	Username    string
	EmailID     string
	MobileNo    *string
	DisplayName string
	Password    string
	CreatedBy   int64
}

// Create registers a new account. Username and email must both be unused.
// A welcome mail goes out best-effort after the insert.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.PublicUser, error) {
	if _, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperr.Validation("Username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.EmailID); err == nil {
		return nil, apperr.Validation("Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcrypt)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &domain.User{
		Username:    input.Username,
		EmailID:     input.EmailID,
		MobileNo:    input.MobileNo,
		DisplayName: input.DisplayName,
		Password:    string(hash),
		Status:      domain.StatusActive,
		CreatedBy:   input.CreatedBy,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The pre-checks race with concurrent inserts; the unique indexes
		// are the real guard.
		if errors.Is(err, repository.ErrDuplicateUsername) || errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.Validation("Username or email already exists")
		}
		return nil, apperr.Internal(err)
	}

	if err := s.mailer.Send(ctx, user.EmailID, "Welcome",
		fmt.Sprintf("Hi %s, your account has been created.", user.DisplayName)); err != nil {
		s.logger.Error("failed to send welcome mail",
			zap.Int64("userId", user.UserID),
			zap.Error(err),
		)
	}

	return user.Public(), nil
}

// UpdateUserInput is the validated payload for a profile update. Username,
// email and password are immutable through this path.
type UpdateUserInput struct {
	UserID      int64
	DisplayName string
	MobileNo    *string
	ModifiedBy  int64
}

// Update changes the mutable profile fields.
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) error {
	err := s.userRepo.Update(ctx, input.UserID, input.DisplayName, input.MobileNo, input.ModifiedBy)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// Delete deactivates the account. The row stays for audit.
func (s *UserService) Delete(ctx context.Context, userID, modifiedBy int64) error {
	if err := s.userRepo.SoftDelete(ctx, userID, modifiedBy); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// GetByID returns one active user in client-safe form.
func (s *UserService) GetByID(ctx context.Context, userID int64) (*domain.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err)
	}
	return user.Public(), nil
}

// GetAll returns every active user in client-safe form.
func (s *UserService) GetAll(ctx context.Context) ([]*domain.PublicUser, error) {
	users, err := s.userRepo.GetAllActive(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	public := make([]*domain.PublicUser, 0, len(users))
	for _, user := range users {
		public = append(public, user.Public())
	}
	return public, nil
}
