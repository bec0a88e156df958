package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
// Callers wrap them with fmt.Errorf("%w: ...") and check with errors.Is.
var (
	// ErrValidation is returned when input is malformed. It is always raised
	// before the store is touched.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when no record matches a get, update or delete.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a commit violates a store constraint
	// (unique, foreign key, not null, check).
	ErrConflict = errors.New("conflict")

	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or a refresh token is absent, used or expired.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenMismatch is returned when a refresh token does not belong to
	// the subject of the presented access token.
	ErrTokenMismatch = errors.New("refresh token does not belong to token subject")

	// ErrInvalidCredentials is returned for every failed login, whether or
	// not the user exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached. Callers may retry with backoff.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrForbidden is returned when an authenticated principal lacks a
	// required role.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError describes a single invalid field.
// It unwraps to ErrValidation unless a more specific cause is given.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Message)
}

// Unwrap supports errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

// Is reports ErrValidation as a match even when a more specific cause is wrapped.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
