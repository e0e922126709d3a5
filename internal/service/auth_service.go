// Package service contains the business logic: session lifecycle, rate
// limiting, user management and the book catalogue. Handlers stay thin and
// delegate here; repositories stay dumb and only move data.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/amarthakur0/go-api-template/internal/domain"
	"github.com/amarthakur0/go-api-template/internal/repository"
	"github.com/amarthakur0/go-api-template/internal/token"
)

// Login failure sentinels. The handler needs to distinguish unknown-user
// failures from the rest to decide which limiter counters to charge; clients
// never see the distinction.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserDisabled     = errors.New("user is disabled")
	ErrPasswordMismatch = errors.New("password mismatch")

	// ErrRefreshNotMapped means the presented refresh token is not the one
	// currently stored for the user, typically because a newer login or
	// refresh rotated it away.
	ErrRefreshNotMapped = errors.New("refresh token not mapped to user")

	// ErrSessionNotFound means a cryptographically valid token arrived but
	// the user has no stored session row at all.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionMismatch means the stored session row disagrees with the
	// presented token on one of the cross-checked fields, i.e. the token
	// was superseded by a later login or refresh, or the session was closed.
	ErrSessionMismatch = errors.New("session mismatch")
)

// LoginResult is what a successful login hands back to the handler: the
// sanitized user plus the freshly issued token pair.
type LoginResult struct {
	User         *domain.PublicUser
	AuthToken    string
	RefreshToken string
}

// AuthenticatedUser is the identity attached to the request context after the
// auth middleware accepts a token.
type AuthenticatedUser struct {
	User   *domain.User
	Source domain.Source
}

// AuthService owns the session lifecycle: login, logout, refresh rotation and
// per-request token validation.
type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.SessionTokenRepository
	signer    *token.Signer
	logger    *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.SessionTokenRepository,
	signer *token.Signer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		signer:    signer,
		logger:    logger,
	}
}

// Login verifies the credentials and opens a session, overwriting whatever
// session the user had before. The username lookup is case-sensitive.
func (s *AuthService) Login(ctx context.Context, username, password string, source domain.Source) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive() {
		return nil, ErrUserDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrPasswordMismatch
	}

	result, err := s.openSession(ctx, user, source)
	if err != nil {
		return nil, err
	}

	// Last-login is informational; a write failure must not fail the login.
	if err := s.userRepo.UpdateLastLogin(ctx, user.UserID, time.Now()); err != nil {
		s.logger.Error("failed to update last login time",
			zap.Int64("userId", user.UserID),
			zap.Error(err),
		)
	}

	return result, nil
}

// Refresh rotates the session: the presented refresh token must be the one
// currently stored for the user, and both it and the old access token die
// with the rotation.
func (s *AuthService) Refresh(ctx context.Context, userID int64, refreshToken string) (*LoginResult, error) {
	stored, err := s.tokenRepo.GetByRefreshToken(ctx, userID, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshNotMapped
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// The new session keeps the source the original login declared.
	return s.openSession(ctx, user, stored.Source)
}

// Logout invalidates the user's stored session. Logging out with no live
// session is not an error.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.tokenRepo.Invalidate(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

// ValidateToken runs the full server-side session check for a bearer token.
// Beyond the signature and expiry check, the token must match the stored
// session row: the exact token string, the token id and the source, the row
// must still be Active, and the stored expiry must not have passed. Any
// mismatch means the session was superseded or closed, and the token is dead
// regardless of its own validity.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*AuthenticatedUser, error) {
	claims, err := s.signer.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	stored, err := s.tokenRepo.GetByUserID(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if stored.Status != domain.StatusActive ||
		stored.AuthToken != tokenString ||
		stored.TokenID != claims.TokenID ||
		stored.Source != claims.Source {
		return nil, ErrSessionMismatch
	}

	// The stored expiry is authoritative server-side: even a token whose
	// own exp has not passed dies once the row says the session is over.
	if !time.Now().Before(stored.TokenExpiry) {
		return nil, token.ErrTokenExpired
	}

	return &AuthenticatedUser{User: user, Source: claims.Source}, nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User, source domain.Source) (*LoginResult, error) {
	issued, err := s.signer.Issue(user.UserID, source)
	if err != nil {
		return nil, err
	}

	session := &domain.SessionToken{
		UserID:       user.UserID,
		AuthToken:    issued.AccessToken,
		RefreshToken: issued.RefreshToken,
		TokenID:      issued.TokenID,
		Source:       source,
		Status:       domain.StatusActive,
		TokenExpiry:  issued.ExpiresAt,
	}
	if err := s.tokenRepo.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &LoginResult{
		User:         user.Public(),
		AuthToken:    issued.AccessToken,
		RefreshToken: issued.RefreshToken,
	}, nil
}
