package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/store"
)

// RefreshTokenStore implements store.RefreshTokenStore over the
// refresh_tokens table. Redemption is a conditional UPDATE, so the store's
// row locking decides the single winner.
type RefreshTokenStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	now     func() time.Time
}

var _ store.RefreshTokenStore = (*RefreshTokenStore)(nil)

// NewRefreshTokenStore creates a RefreshTokenStore. A nil logger uses slog.Default().
func NewRefreshTokenStore(db *sql.DB, dialect Dialect, log *slog.Logger) *RefreshTokenStore {
	if log == nil {
		log = slog.Default()
	}
	return &RefreshTokenStore{
		db:      db,
		dialect: dialect,
		logger:  log.With(slog.String("component", "refresh_token_store")),
		now:     time.Now,
	}
}

// Save implements store.RefreshTokenStore.
func (s *RefreshTokenStore) Save(ctx context.Context, token *domain.RefreshToken) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`INSERT INTO refresh_tokens
		(token_hash, owner_id, issued_at, expires_at, used)
		VALUES (?, ?, ?, ?, ?)`),
		store.HashRefreshToken(token.Value),
		token.OwnerID.String(),
		token.IssuedAt.UTC(),
		token.ExpiresAt.UTC(),
		token.Used,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save refresh token",
			slog.String("owner_id", token.OwnerID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// FindByValue implements store.RefreshTokenStore.
func (s *RefreshTokenStore) FindByValue(ctx context.Context, value string) (*domain.RefreshToken, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(`SELECT owner_id, issued_at, expires_at, used
		FROM refresh_tokens WHERE token_hash = ?`), store.HashRefreshToken(value))

	token := domain.RefreshToken{Value: value}
	err := row.Scan(&token.OwnerID, &token.IssuedAt, &token.ExpiresAt, &token.Used)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrRefreshTokenNotFound
	}
	if err != nil {
		return nil, MapError(err)
	}
	token.IssuedAt = token.IssuedAt.UTC()
	token.ExpiresAt = token.ExpiresAt.UTC()
	return &token, nil
}

// MarkUsed implements store.RefreshTokenStore.
func (s *RefreshTokenStore) MarkUsed(ctx context.Context, value string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(`UPDATE refresh_tokens
		SET used = ?, used_at = ?
		WHERE token_hash = ? AND used = ?`),
		true,
		s.now().UTC(),
		store.HashRefreshToken(value),
		false,
	)
	if err != nil {
		return false, MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}
	if n != 1 {
		logger.FromContextOrDefault(ctx, s.logger).Warn("refresh token already redeemed or absent")
		return false, nil
	}
	return true, nil
}

// RevokeAllForPrincipal implements store.RefreshTokenStore.
func (s *RefreshTokenStore) RevokeAllForPrincipal(ctx context.Context, principalID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		s.dialect.Rebind(`DELETE FROM refresh_tokens WHERE owner_id = ?`), principalID.String())
	if err != nil {
		return MapError(err)
	}
	n, _ := res.RowsAffected()
	logger.FromContextOrDefault(ctx, s.logger).Info("revoked refresh tokens",
		slog.String("owner_id", principalID.String()),
		slog.Int64("count", n))
	return nil
}

// PurgeExpired implements store.RefreshTokenStore.
func (s *RefreshTokenStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		s.dialect.Rebind(`DELETE FROM refresh_tokens WHERE expires_at < ?`), before.UTC())
	if err != nil {
		return 0, MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}
