package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/store"
)

// LoginRequest carries the credentials of a login attempt.
type LoginRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenRequest is a refresh exchange: the last access token, which may be
// expired, plus the refresh token issued with it.
type TokenRequest struct {
	AccessToken  string `json:"token" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthManager coordinates login, refresh-token rotation and logout.
type AuthManager struct {
	validator   *CredentialValidator
	issuer      *TokenIssuer
	credentials store.CredentialStore
	refresh     store.RefreshTokenStore
	now         func() time.Time
	logger      *slog.Logger
}

// NewAuthManager creates an AuthManager. A nil logger uses slog.Default().
func NewAuthManager(
	validator *CredentialValidator,
	issuer *TokenIssuer,
	credentials store.CredentialStore,
	refresh store.RefreshTokenStore,
	log *slog.Logger,
) *AuthManager {
	if log == nil {
		log = slog.Default()
	}
	return &AuthManager{
		validator:   validator,
		issuer:      issuer,
		credentials: credentials,
		refresh:     refresh,
		now:         time.Now,
		logger:      log.With(slog.String("component", "auth_manager")),
	}
}

// ValidateUser checks req's credentials.
func (m *AuthManager) ValidateUser(ctx context.Context, req LoginRequest) (*domain.Principal, error) {
	return m.validator.Validate(ctx, req.UserName, req.Password)
}

// CreateToken signs an access token for principal.
func (m *AuthManager) CreateToken(ctx context.Context, principal *domain.Principal) (*domain.AccessToken, error) {
	return m.issuer.IssueAccessToken(ctx, principal)
}

// CreateRefreshToken issues and stores a refresh token for principal.
func (m *AuthManager) CreateRefreshToken(ctx context.Context, principal *domain.Principal) (*domain.RefreshToken, error) {
	return m.issuer.IssueRefreshToken(ctx, principal)
}

// Login validates req and issues an access and refresh token pair.
func (m *AuthManager) Login(ctx context.Context, req LoginRequest) (*domain.TokenPair, error) {
	principal, err := m.ValidateUser(ctx, req)
	if err != nil {
		return nil, err
	}

	pair, err := m.issuePair(ctx, principal)
	if err != nil {
		return nil, err
	}
	m.log(ctx).Info("user logged in", slog.String("user_id", principal.ID.String()))
	return pair, nil
}

// VerifyRefreshToken exchanges a refresh token for a new pair. The refresh
// token must be unused, unexpired and owned by the access token's subject;
// it is consumed exactly once even under concurrent redemption.
func (m *AuthManager) VerifyRefreshToken(ctx context.Context, req TokenRequest) (*domain.TokenPair, error) {
	log := m.log(ctx)

	claims, err := m.issuer.ParseExpiredAccessToken(ctx, req.AccessToken)
	if err != nil {
		log.Debug("refresh rejected: access token unparseable")
		return nil, ErrInvalidToken
	}

	stored, err := m.refresh.FindByValue(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("refresh rejected: unknown refresh token", slog.String("user_id", claims.UserID.String()))
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if !stored.Active(m.now()) {
		log.Debug("refresh rejected: refresh token used or expired",
			slog.String("user_id", claims.UserID.String()),
			slog.Bool("used", stored.Used))
		return nil, ErrInvalidRefreshToken
	}

	if stored.OwnerID != claims.UserID {
		log.Warn("refresh rejected: token owner does not match subject",
			slog.String("subject", claims.UserID.String()),
			slog.String("owner_id", stored.OwnerID.String()))
		return nil, domain.ErrTokenMismatch
	}

	won, err := m.refresh.MarkUsed(ctx, req.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("redeem refresh token: %w", err)
	}
	if !won {
		log.Warn("refresh rejected: token redeemed concurrently", slog.String("user_id", claims.UserID.String()))
		return nil, ErrInvalidRefreshToken
	}

	cred, err := m.credentials.FindByID(ctx, stored.OwnerID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("refresh rejected: owner no longer exists", slog.String("user_id", stored.OwnerID.String()))
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("reload principal: %w", err)
	}

	pair, err := m.issuePair(ctx, cred.Principal())
	if err != nil {
		return nil, err
	}
	log.Info("refresh token rotated", slog.String("user_id", cred.PrincipalID.String()))
	return pair, nil
}

// Logout revokes every refresh token of principalID. Access tokens stay
// valid until they expire.
func (m *AuthManager) Logout(ctx context.Context, principalID uuid.UUID) error {
	if err := m.refresh.RevokeAllForPrincipal(ctx, principalID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

// PurgeExpired removes refresh tokens that expired before now.
func (m *AuthManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.refresh.PurgeExpired(ctx, m.now())
}

func (m *AuthManager) issuePair(ctx context.Context, principal *domain.Principal) (*domain.TokenPair, error) {
	access, err := m.CreateToken(ctx, principal)
	if err != nil {
		return nil, err
	}
	refresh, err := m.CreateRefreshToken(ctx, principal)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *AuthManager) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, m.logger)
}
