package domain

import "time"

// Source identifies the client type a session was opened from. It controls
// the access token lifetime.
type Source int

const (
	SourceWeb    Source = 1
	SourceMobile Source = 2
)

// Valid reports whether the source is one of the known client types.
func (s Source) Valid() bool {
	return s == SourceWeb || s == SourceMobile
}

// SessionToken is the server-side session record. The unique index on
// user_id is what enforces a single active session per user: every login or
// refresh overwrites this one row, and logout blanks it.
type SessionToken struct {
	ID           int64        `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       int64        `gorm:"column:user_id;uniqueIndex:unq_user_id"`
	AuthToken    string       `gorm:"column:auth_token;size:1000"`
	RefreshToken string       `gorm:"column:refresh_token;size:50"`
	TokenID      string       `gorm:"column:jwt_id;size:50"`
	Source       Source       `gorm:"column:source;default:1"`
	Status       RecordStatus `gorm:"column:status;size:1;default:A"`
	TokenExpiry  time.Time    `gorm:"column:token_expiry"`
	CreatedDate  time.Time    `gorm:"column:created_date;autoCreateTime"`
}

func (SessionToken) TableName() string { return "user_auth_token" }
