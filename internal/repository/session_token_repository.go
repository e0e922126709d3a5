package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amarthakur0/go-api-template/internal/domain"
	"github.com/amarthakur0/go-api-template/pkg/database"
)

// sessionTokenRepository implements SessionTokenRepository on top of gorm.
type sessionTokenRepository struct {
	db *database.MySQL
}

// NewSessionTokenRepository creates a new session token repository
func NewSessionTokenRepository(db *database.MySQL) SessionTokenRepository {
	return &sessionTokenRepository{db: db}
}

// Put upserts the single session row for token.UserID. The unique index on
// user_id makes the insert-or-overwrite a single atomic statement, so two
// concurrent logins for one user resolve last-writer-wins.
func (r *sessionTokenRepository) Put(ctx context.Context, token *domain.SessionToken) error {
	token.Status = domain.StatusActive

	err := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"auth_token", "refresh_token", "jwt_id", "source", "status", "token_expiry",
			}),
		}).
		Create(token).Error
	if err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}

	return nil
}

// GetByUserID retrieves the session row for a user.
func (r *sessionTokenRepository) GetByUserID(ctx context.Context, userID int64) (*domain.SessionToken, error) {
	token := &domain.SessionToken{}

	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		First(token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session token for user %d not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session token: %w", err)
	}

	return token, nil
}

// GetByRefreshToken retrieves the session row matching both the user id and
// the refresh token string.
func (r *sessionTokenRepository) GetByRefreshToken(ctx context.Context, userID int64, refreshToken string) (*domain.SessionToken, error) {
	token := &domain.SessionToken{}

	err := r.db.DB.WithContext(ctx).
		Where("user_id = ? AND refresh_token = ?", userID, refreshToken).
		First(token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("refresh token for user %d not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session token by refresh token: %w", err)
	}

	return token, nil
}

// Invalidate blanks the token material and marks the row Inactive. The row
// itself stays, ready to be overwritten by the next login.
func (r *sessionTokenRepository) Invalidate(ctx context.Context, userID int64) error {
	result := r.db.DB.WithContext(ctx).
		Model(&domain.SessionToken{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"auth_token":    "",
			"refresh_token": "",
			"jwt_id":        "",
			"source":        0,
			"status":        domain.StatusInactive,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to invalidate session token: %w", result.Error)
	}

	return nil
}
