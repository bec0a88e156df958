package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/store"
)

// fallbackDummyHash is a valid bcrypt hash (cost 10) used when the
// configured hasher cannot produce the dummy. It matches no password.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// CredentialValidator checks a user name and password against the identity
// store. Unknown users and wrong passwords are indistinguishable to callers,
// and both paths run one password comparison.
type CredentialValidator struct {
	credentials store.CredentialStore
	hasher      PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialValidator creates a CredentialValidator.
func NewCredentialValidator(credentials store.CredentialStore, hasher PasswordHasher) *CredentialValidator {
	return &CredentialValidator{credentials: credentials, hasher: hasher}
}

// Validate returns the principal for userName when password matches.
func (v *CredentialValidator) Validate(ctx context.Context, userName, password string) (*domain.Principal, error) {
	log := logger.FromContext(ctx)
	normalized := domain.NormalizeUserName(userName)

	cred, err := v.credentials.FindByNormalizedUserName(ctx, normalized)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("credential lookup failed", slog.String("error", err.Error()))
			return nil, fmt.Errorf("credential lookup: %w", err)
		}
		_ = v.hasher.Compare(v.dummy(log), password)
		log.Debug("login rejected: unknown user")
		return nil, domain.ErrInvalidCredentials
	}

	if err := v.hasher.Compare(cred.PasswordHash, password); err != nil {
		if !errors.Is(err, ErrPasswordMismatch) {
			log.Warn("stored password hash could not be checked",
				slog.String("user_id", cred.PrincipalID.String()),
				slog.String("error", err.Error()))
		}
		log.Debug("login rejected: wrong password", slog.String("user_id", cred.PrincipalID.String()))
		return nil, domain.ErrInvalidCredentials
	}

	return cred.Principal(), nil
}

// dummy is a hash of a random-looking constant made with the configured
// hasher, so an unknown user costs the same as a wrong password.
func (v *CredentialValidator) dummy(log *slog.Logger) string {
	v.dummyOnce.Do(func() {
		h, err := v.hasher.Hash("timing-equalizer-not-a-password")
		if err != nil {
			log.Error("could not hash dummy password, using fallback",
				slog.String("error", err.Error()))
			h = fallbackDummyHash
		}
		v.dummyHash = h
	})
	return v.dummyHash
}
