package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
)

// JWTService signs and verifies access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for principal.
	GenerateToken(ctx context.Context, principal *domain.Principal) (*domain.AccessToken, error)

	// ValidateToken fully validates tokenString: signature, issuer and expiry
	// with the configured clock-skew leeway.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// ParseExpiredToken checks signature and issuer but ignores expiry. It is
	// used only by the refresh exchange to learn the token's subject.
	ParseExpiredToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the verified contents of an access token.
type Claims struct {
	UserID    uuid.UUID
	UserName  string
	Roles     []string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Principal returns the principal the token was issued for.
func (c *Claims) Principal() *domain.Principal {
	return &domain.Principal{ID: c.UserID, UserName: c.UserName, Roles: c.Roles}
}
