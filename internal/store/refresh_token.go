package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
)

// RefreshTokenStore persists refresh tokens. Implementations never store the
// raw token value, only HashRefreshToken(value).
type RefreshTokenStore interface {
	// Save stores a new, unused token.
	Save(ctx context.Context, token *domain.RefreshToken) error

	// FindByValue looks up a token by its raw value. It returns
	// ErrRefreshTokenNotFound when absent. The returned token's Value is the
	// presented value.
	FindByValue(ctx context.Context, value string) (*domain.RefreshToken, error)

	// MarkUsed atomically flips used from false to true. Exactly one caller
	// per token observes true; every later or concurrent caller observes false.
	MarkUsed(ctx context.Context, value string) (bool, error)

	// RevokeAllForPrincipal invalidates every token owned by principalID.
	RevokeAllForPrincipal(ctx context.Context, principalID uuid.UUID) error

	// PurgeExpired deletes tokens that expired before the cutoff and returns
	// how many were removed.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// HashRefreshToken returns the storage key for a raw refresh token value.
func HashRefreshToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
