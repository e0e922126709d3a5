package domain

import "time"

// RecordStatus is the soft-delete flag used across all tables.
type RecordStatus string

const (
	StatusActive   RecordStatus = "A"
	StatusInactive RecordStatus = "I"
)

// User represents a user account. Rows are never physically deleted;
// deactivation flips Status to Inactive.
type User struct {
	UserID        int64        `gorm:"column:user_id;primaryKey;autoIncrement" json:"userId"`
	Username      string       `gorm:"column:username;size:50;uniqueIndex:unq_username" json:"username"`
	EmailID       string       `gorm:"column:email_id;size:100;uniqueIndex:unq_email_id" json:"emailId"`
	MobileNo      *string      `gorm:"column:mobile_no;size:15" json:"mobileNo,omitempty"`
	DisplayName   string       `gorm:"column:display_name;size:50" json:"displayName"`
	Password      string       `gorm:"column:password;size:100" json:"-"`
	Status        RecordStatus `gorm:"column:status;size:1;default:A;index:idx_status" json:"-"`
	LastLoginTime *time.Time   `gorm:"column:last_login_time" json:"-"`
	CreatedBy     int64        `gorm:"column:created_by" json:"-"`
	CreatedDate   time.Time    `gorm:"column:created_date;autoCreateTime" json:"createdDate"`
	ModifiedBy    int64        `gorm:"column:modified_by" json:"-"`
	ModifiedDate  *time.Time   `gorm:"column:modified_date" json:"-"`
}

func (User) TableName() string { return "user" }

// IsActive reports whether the account can authenticate.
func (u *User) IsActive() bool { return u.Status == StatusActive }

// PublicUser is the client-facing view of a user: no password hash, no
// status, no audit fields beyond creation time.
type PublicUser struct {
	UserID      int64     `json:"userId"`
	Username    string    `json:"username"`
	EmailID     string    `json:"emailId"`
	MobileNo    *string   `json:"mobileNo,omitempty"`
	DisplayName string    `json:"displayName"`
	CreatedDate time.Time `json:"createdDate"`
}

// Public strips the credential and lifecycle fields from a user record.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		UserID:      u.UserID,
		Username:    u.Username,
		EmailID:     u.EmailID,
		MobileNo:    u.MobileNo,
		DisplayName: u.DisplayName,
		CreatedDate: u.CreatedDate,
	}
}
