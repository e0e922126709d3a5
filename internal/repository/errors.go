package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUsername is returned when creating a user with a taken username
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrDuplicateEmail is returned when creating a user with a taken email id
	ErrDuplicateEmail = errors.New("email id already exists")

	// ErrDuplicateISBN is returned when creating a book with a taken ISBN number
	ErrDuplicateISBN = errors.New("isbn number already exists")
)
