package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
)

// CredentialStore is the identity store. The authentication core only reads
// from it; Create is used by account registration and the admin CLI.
type CredentialStore interface {
	// FindByNormalizedUserName returns ErrUserNotFound when no account matches.
	FindByNormalizedUserName(ctx context.Context, normalized string) (*domain.Credential, error)

	// FindByID returns ErrUserNotFound when no account matches.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error)

	// Create stores a new account with its roles. Unknown roles are rejected
	// with ErrConstraint; a taken user name with ErrUserNameExists.
	Create(ctx context.Context, cred *domain.Credential) error
}
