// Package dto defines the request payloads. Validation is declarative via
// gin's binding tags; anything the tags cannot express is checked in the
// handler before the service is called.
package dto

// CreateUserRequest is the payload for user registration.
type CreateUserRequest struct {
	Username    string  `json:"username" binding:"required,min=3,max=50"`
	EmailID     string  `json:"emailId" binding:"required,email,max=100"`
	MobileNo    *string `json:"mobileNo" binding:"omitempty,max=15"`
	DisplayName string  `json:"displayName" binding:"required,max=50"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
}

// UpdateUserRequest is the payload for a profile update. Username, email and
// password cannot be changed through this endpoint.
type UpdateUserRequest struct {
	UserID      int64   `json:"userId" binding:"required,gt=0"`
	DisplayName string  `json:"displayName" binding:"required,max=50"`
	MobileNo    *string `json:"mobileNo" binding:"omitempty,max=15"`
}

// DeleteUserRequest identifies the account to deactivate.
type DeleteUserRequest struct {
	UserID int64 `json:"userId" binding:"required,gt=0"`
}

// LoginRequest is the login payload. Source is optional and defaults to the
// web client, which gets the short token lifetime.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Source   int    `json:"source" binding:"omitempty,oneof=1 2"`
}

// RefreshTokenRequest is the session rotation payload.
type RefreshTokenRequest struct {
	UserID       int64  `json:"userId" binding:"required,gt=0"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// CreateBookRequest is the payload for adding a book to the catalogue.
// PublishDate uses YYYY-MM-DD.
type CreateBookRequest struct {
	ISBNNumber  string  `json:"isbnNumber" binding:"required,max=20"`
	BookName    string  `json:"bookName" binding:"required,max=100"`
	BookSummary *string `json:"bookSummary" binding:"omitempty,max=500"`
	BookAuthor  *string `json:"bookAuthor" binding:"omitempty,max=100"`
	Publication *string `json:"publication" binding:"omitempty,max=100"`
	PublishDate string  `json:"publishDate" binding:"required,datetime=2006-01-02"`
}

// UpdateBookRequest is the payload for a book update. ISBN is immutable.
type UpdateBookRequest struct {
	BookID      int64   `json:"bookId" binding:"required,gt=0"`
	BookName    string  `json:"bookName" binding:"required,max=100"`
	BookSummary *string `json:"bookSummary" binding:"omitempty,max=500"`
	BookAuthor  *string `json:"bookAuthor" binding:"omitempty,max=100"`
	Publication *string `json:"publication" binding:"omitempty,max=100"`
	PublishDate string  `json:"publishDate" binding:"required,datetime=2006-01-02"`
}

// DeleteBookRequest identifies the book to deactivate.
type DeleteBookRequest struct {
	BookID int64 `json:"bookId" binding:"required,gt=0"`
}

// BookListingRequest carries the listing filters and pagination. All fields
// are optional; date bounds use YYYY-MM-DD.
type BookListingRequest struct {
	BookName        string `json:"bookName" form:"bookName"`
	BookAuthor      string `json:"bookAuthor" form:"bookAuthor"`
	Publication     string `json:"publication" form:"publication"`
	PublishDateFrom string `json:"publishDateFrom" form:"publishDateFrom" binding:"omitempty,datetime=2006-01-02"`
	PublishDateTo   string `json:"publishDateTo" form:"publishDateTo" binding:"omitempty,datetime=2006-01-02"`
	Page            int    `json:"page" form:"page" binding:"omitempty,gte=1"`
	Limit           int    `json:"limit" form:"limit" binding:"omitempty,gte=1,lte=100"`
}
