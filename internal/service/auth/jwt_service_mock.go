package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
)

// MockJWTService is a mock implementation of the JWTService interface for testing.
type MockJWTService struct {
	GenerateTokenFunc     func(ctx context.Context, principal *domain.Principal) (*domain.AccessToken, error)
	ValidateTokenFunc     func(ctx context.Context, tokenString string) (*Claims, error)
	ParseExpiredTokenFunc func(ctx context.Context, tokenString string) (*Claims, error)

	// Fixed fields for simple cases
	Token           string  // Default token to return
	TokenError      error   // Default error for token generation
	ValidationError error   // Default error for token validation
	Claims          *Claims // Default claims to return
}

var _ JWTService = (*MockJWTService)(nil)

// NewMockJWTService creates a mock whose tokens validate to a fresh user
// holding the User role.
func NewMockJWTService() *MockJWTService {
	now := time.Now()
	return &MockJWTService{
		Token: "mock-jwt-token",
		Claims: &Claims{
			UserID:    uuid.New(),
			UserName:  "mock-user",
			Roles:     []string{domain.RoleUser},
			Issuer:    "hotel-listing-api",
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
			ID:        uuid.New().String(),
		},
	}
}

// GenerateToken implements JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, principal *domain.Principal) (*domain.AccessToken, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(ctx, principal)
	}
	if m.TokenError != nil {
		return nil, m.TokenError
	}
	now := time.Now()
	return &domain.AccessToken{
		Value:     m.Token,
		Subject:   principal.ID,
		Roles:     principal.Roles,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}, nil
}

// ValidateToken implements JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, tokenString)
	}
	if m.ValidationError != nil {
		return nil, m.ValidationError
	}
	return m.Claims, nil
}

// ParseExpiredToken implements JWTService.
func (m *MockJWTService) ParseExpiredToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ParseExpiredTokenFunc != nil {
		return m.ParseExpiredTokenFunc(ctx, tokenString)
	}
	if m.ValidationError != nil {
		return nil, m.ValidationError
	}
	return m.Claims, nil
}
