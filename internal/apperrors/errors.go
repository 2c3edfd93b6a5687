// Package apperrors contains sentinel errors used across layers for stable
// error-to-status mapping at the route boundary.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation error")

	// ErrAuth indicates bad credentials or an invalid/expired token.
	ErrAuth = errors.New("unauthorized")

	// ErrNotFound indicates a missing or foreign-owned resource.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a duplicate registration or duplicate review.
	ErrConflict = errors.New("conflict")
)

// Error carries a caller-facing message on top of one of the sentinels above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func Auth(msg string) error { return &Error{Kind: ErrAuth, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// StatusCode maps an error to its HTTP status. Duplicates map to 400 to match
// the public API contract; anything unrecognized is a 500.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
