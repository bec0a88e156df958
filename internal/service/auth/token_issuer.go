package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/config"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/store"
)

// refreshValueBytes is the entropy of a refresh token value.
const refreshValueBytes = 32

// TokenIssuer mints access tokens through a JWTService and persists opaque
// refresh tokens in a RefreshTokenStore.
type TokenIssuer struct {
	jwt        JWTService
	refresh    store.RefreshTokenStore
	refreshTTL time.Duration
	now        func() time.Time
	random     io.Reader
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(jwtService JWTService, refresh store.RefreshTokenStore, cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		jwt:        jwtService,
		refresh:    refresh,
		refreshTTL: cfg.RefreshTokenLifetime(),
		now:        time.Now,
		random:     rand.Reader,
	}
}

// IssueAccessToken signs an access token for principal.
func (i *TokenIssuer) IssueAccessToken(ctx context.Context, principal *domain.Principal) (*domain.AccessToken, error) {
	return i.jwt.GenerateToken(ctx, principal)
}

// ParseExpiredAccessToken returns the claims of a correctly signed token
// whether or not it has expired.
func (i *TokenIssuer) ParseExpiredAccessToken(ctx context.Context, token string) (*Claims, error) {
	return i.jwt.ParseExpiredToken(ctx, token)
}

// IssueRefreshToken creates and stores a fresh refresh token for principal.
// The returned value is the only copy of the plaintext token.
func (i *TokenIssuer) IssueRefreshToken(ctx context.Context, principal *domain.Principal) (*domain.RefreshToken, error) {
	if principal == nil || principal.ID == uuid.Nil {
		return nil, domain.NewValidationError("principal", "is required", nil)
	}

	value, err := newRefreshValue(i.random)
	if err != nil {
		return nil, err
	}

	now := i.now().UTC().Truncate(time.Microsecond)
	token := &domain.RefreshToken{
		Value:     value,
		OwnerID:   principal.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.refreshTTL),
	}
	if err := i.refresh.Save(ctx, token); err != nil {
		logger.FromContext(ctx).Error("failed to persist refresh token",
			slog.String("user_id", principal.ID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("save refresh token: %w", err)
	}
	return token, nil
}

func newRefreshValue(r io.Reader) (string, error) {
	buf := make([]byte, refreshValueBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
