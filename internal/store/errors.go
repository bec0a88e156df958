package store

import (
	"fmt"

	"github.com/phrazzld/hotel-listing-api/internal/domain"
)

// Common store errors used across all store implementations.
// Each wraps the matching domain sentinel so services can test with either.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = fmt.Errorf("%w: record", domain.ErrNotFound)

	// ErrDuplicate is returned when a write would violate a unique constraint.
	ErrDuplicate = fmt.Errorf("%w: record already exists", domain.ErrConflict)

	// ErrConstraint is returned for foreign key, not null and check violations.
	ErrConstraint = fmt.Errorf("%w: constraint violation", domain.ErrConflict)

	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = fmt.Errorf("%w", domain.ErrStoreUnavailable)

	// ErrUserNotFound indicates that the requested account does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrRefreshTokenNotFound indicates that no refresh token has the presented value.
	ErrRefreshTokenNotFound = fmt.Errorf("%w: refresh token", ErrNotFound)

	// ErrUserNameExists is returned when registering a taken user name.
	ErrUserNameExists = fmt.Errorf("%w: user name", ErrDuplicate)
)

// StoreError is a store error with the entity and operation that produced it.
// Repository reads return one so logs and responses name what was being read.
type StoreError struct {
	Entity    string // The entity type (e.g., "hotel", "refresh_token")
	Operation string // The operation that failed (e.g., "insert", "mark_used")
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
