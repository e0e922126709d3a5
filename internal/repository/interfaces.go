package repository

import (
	"context"
	"time"

	"github.com/amarthakur0/go-api-template/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// GetByID resolves an active user; inactive accounts report ErrNotFound.
	GetByID(ctx context.Context, userID int64) (*domain.User, error)
	// GetByUsername is a case-sensitive exact lookup returning the full
	// record including password hash and status, regardless of status.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, emailID string) (*domain.User, error)
	GetAllActive(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, userID int64, displayName string, mobileNo *string, modifiedBy int64) error
	// SoftDelete flips the status to Inactive; rows are never removed.
	SoftDelete(ctx context.Context, userID, modifiedBy int64) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
}

// SessionTokenRepository is the single source of truth for whether a session
// is still valid server-side. There is at most one row per user.
type SessionTokenRepository interface {
	// Put upserts the one session row for the user, overwriting any
	// previous token material and setting the status Active. This is the
	// mechanism enforcing single-active-session-per-user.
	Put(ctx context.Context, token *domain.SessionToken) error
	GetByUserID(ctx context.Context, userID int64) (*domain.SessionToken, error)
	// GetByRefreshToken matches both user id and refresh token, preventing
	// cross-account refresh token reuse.
	GetByRefreshToken(ctx context.Context, userID int64, refreshToken string) (*domain.SessionToken, error)
	// Invalidate blanks the token fields and sets the status Inactive.
	Invalidate(ctx context.Context, userID int64) error
}

// BookRepository defines methods for book catalogue operations
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	CreateBatch(ctx context.Context, books []*domain.Book) error
	GetByID(ctx context.Context, bookID int64) (*domain.Book, error)
	GetByISBN(ctx context.Context, isbnNumber string) (*domain.Book, error)
	GetAllActive(ctx context.Context) ([]*domain.Book, error)
	Listing(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, int64, error)
	Update(ctx context.Context, book *domain.Book) error
	SoftDelete(ctx context.Context, bookID, modifiedBy int64) error
}
