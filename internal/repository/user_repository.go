package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/amarthakur0/go-api-template/internal/domain"
	"github.com/amarthakur0/go-api-template/pkg/database"
)

// userRepository implements UserRepository on top of gorm.
type userRepository struct {
	db *database.MySQL
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.MySQL) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user record.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.Status == "" {
		user.Status = domain.StatusActive
	}

	err := r.db.DB.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %s conflicts with an existing record: %w", user.Username, ErrDuplicateUsername)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves an active user by id.
func (r *userRepository) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.StatusActive).
		First(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with id %d not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by exact username, including password hash
// and status. Status filtering is the caller's decision (login needs to
// distinguish a disabled account from a missing one).
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.DB.WithContext(ctx).
		Where("username = ?", username).
		First(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s not found: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email id.
func (r *userRepository) GetByEmail(ctx context.Context, emailID string) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.DB.WithContext(ctx).
		Where("email_id = ?", emailID).
		First(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s not found: %w", emailID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetAllActive lists all active users.
func (r *userRepository) GetAllActive(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User

	err := r.db.DB.WithContext(ctx).
		Where("status = ?", domain.StatusActive).
		Order("user_id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Update changes the mutable profile fields.
func (r *userRepository) Update(ctx context.Context, userID int64, displayName string, mobileNo *string, modifiedBy int64) error {
	now := time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"display_name":  displayName,
			"mobile_no":     mobileNo,
			"modified_by":   modifiedBy,
			"modified_date": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("user with id %d not found: %w", userID, ErrNotFound)
	}

	return nil
}

// SoftDelete deactivates the user.
func (r *userRepository) SoftDelete(ctx context.Context, userID, modifiedBy int64) error {
	now := time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":        domain.StatusInactive,
			"modified_by":   modifiedBy,
			"modified_date": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("user with id %d not found: %w", userID, ErrNotFound)
	}

	return nil
}

// UpdateLastLogin stamps the audit field; callers treat failures here as
// non-fatal.
func (r *userRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Update("last_login_time", at)
	if result.Error != nil {
		return fmt.Errorf("failed to update last login: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("user with id %d not found: %w", userID, ErrNotFound)
	}

	return nil
}
