// Package apperr defines the error taxonomy surfaced to API clients. Every
// failure is classified into a Kind, which fixes the HTTP status, and may
// carry a numeric client code in the response's errorCode field.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for status mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthExpired
	KindAuthInvalid
	KindNotFound
	KindRateLimited
	KindConflict
	KindInternal
)

// Client error codes carried in the errorCode response field. The values are
// part of the API contract.
const (
	CodeNone             = 0
	CodeAuthTokenExpired = 1
	CodeAuthTokenActive  = 2
	CodeDataNotFound     = 3
)

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthExpired, KindAuthInvalid:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error. Message is safe to show to
// clients; the wrapped error keeps the internal detail for logs.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error. The message is what clients see; err
// is preserved for logging.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithCode attaches a client error code.
func (e *Error) WithCode(code int) *Error {
	e.Code = code
	return e
}

// Validation creates a caller-fixable input error.
func Validation(message string) *Error { return New(KindValidation, message) }

// NotFound creates a missing-record error carrying the DATA_NOT_FOUND code.
func NotFound(message string) *Error {
	return New(KindNotFound, message).WithCode(CodeDataNotFound)
}

// Internal wraps an unexpected failure. Clients see only the generic text.
func Internal(err error) *Error {
	return Wrap(KindInternal, "Something went wrong", err)
}

// From extracts the classified error, treating anything unclassified as
// internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
