package redisstore

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
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "refresh"

const markUsedScript = `
if redis.call("HGET", KEYS[1], "used") == "0" then
  redis.call("HSET", KEYS[1], "used", "1", "used_at", ARGV[1])
  return 1
end
return 0
`

var markUsedLua = redis.NewScript(markUsedScript)

const revokeAllScript = `
local members = redis.call("SMEMBERS", KEYS[1])
for _, h in ipairs(members) do
  redis.call("DEL", ARGV[1] .. h)
end
redis.call("DEL", KEYS[1])
return #members
`

var revokeAllLua = redis.NewScript(revokeAllScript)

// RefreshTokenStore implements store.RefreshTokenStore on Redis.
type RefreshTokenStore struct {
	rdb    *redis.Client
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

var _ store.RefreshTokenStore = (*RefreshTokenStore)(nil)

// NewRefreshTokenStore creates a store using the "refresh" key prefix.
// A nil logger uses slog.Default().
func NewRefreshTokenStore(rdb *redis.Client, log *slog.Logger) *RefreshTokenStore {
	if log == nil {
		log = slog.Default()
	}
	return &RefreshTokenStore{
		rdb:    rdb,
		prefix: defaultPrefix,
		logger: log.With(slog.String("component", "redis_refresh_token_store")),
		now:    time.Now,
	}
}

func (s *RefreshTokenStore) tokenKey(hash string) string {
	return s.prefix + ":" + hash
}

func (s *RefreshTokenStore) principalKey(id uuid.UUID) string {
	return s.prefix + ":principal:" + id.String()
}

// Save implements store.RefreshTokenStore.
func (s *RefreshTokenStore) Save(ctx context.Context, token *domain.RefreshToken) error {
	hash := store.HashRefreshToken(token.Value)
	key := s.tokenKey(hash)
	setKey := s.principalKey(token.OwnerID)

	used := "0"
	if token.Used {
		used = "1"
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"owner", token.OwnerID.String(),
			"issued_at", token.IssuedAt.UTC().Format(time.RFC3339Nano),
			"expires_at", token.ExpiresAt.UTC().Format(time.RFC3339Nano),
			"used", used,
		)
		pipe.PExpireAt(ctx, key, token.ExpiresAt)
		pipe.SAdd(ctx, setKey, hash)
		pipe.PExpireAt(ctx, setKey, token.ExpiresAt)
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save refresh token",
			slog.String("owner_id", token.OwnerID.String()),
			slog.String("error", err.Error()))
		return mapError(err)
	}
	return nil
}

// FindByValue implements store.RefreshTokenStore.
func (s *RefreshTokenStore) FindByValue(ctx context.Context, value string) (*domain.RefreshToken, error) {
	fields, err := s.rdb.HGetAll(ctx, s.tokenKey(store.HashRefreshToken(value))).Result()
	if err != nil {
		return nil, mapError(err)
	}
	if len(fields) == 0 {
		return nil, store.ErrRefreshTokenNotFound
	}

	token := &domain.RefreshToken{Value: value, Used: fields["used"] == "1"}
	if token.OwnerID, err = uuid.Parse(fields["owner"]); err != nil {
		return nil, fmt.Errorf("corrupt refresh token owner: %w", err)
	}
	if token.IssuedAt, err = time.Parse(time.RFC3339Nano, fields["issued_at"]); err != nil {
		return nil, fmt.Errorf("corrupt refresh token issued_at: %w", err)
	}
	if token.ExpiresAt, err = time.Parse(time.RFC3339Nano, fields["expires_at"]); err != nil {
		return nil, fmt.Errorf("corrupt refresh token expires_at: %w", err)
	}
	return token, nil
}

// MarkUsed implements store.RefreshTokenStore.
func (s *RefreshTokenStore) MarkUsed(ctx context.Context, value string) (bool, error) {
	key := s.tokenKey(store.HashRefreshToken(value))
	won, err := markUsedLua.Run(ctx, s.rdb, []string{key}, s.now().UTC().Format(time.RFC3339Nano)).Int64()
	if err != nil {
		return false, mapError(err)
	}
	if won != 1 {
		logger.FromContextOrDefault(ctx, s.logger).Warn("refresh token already redeemed or absent")
		return false, nil
	}
	return true, nil
}

// RevokeAllForPrincipal implements store.RefreshTokenStore.
func (s *RefreshTokenStore) RevokeAllForPrincipal(ctx context.Context, principalID uuid.UUID) error {
	n, err := revokeAllLua.Run(ctx, s.rdb,
		[]string{s.principalKey(principalID)}, s.prefix+":").Int64()
	if err != nil {
		return mapError(err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("revoked refresh tokens",
		slog.String("owner_id", principalID.String()),
		slog.Int64("count", n))
	return nil
}

// PurgeExpired implements store.RefreshTokenStore. Redis already drops
// token hashes at their TTL; this removes tokens that expire before the
// cutoff together with index entries whose token is gone.
func (s *RefreshTokenStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	var removed int64
	iter := s.rdb.Scan(ctx, 0, s.prefix+":principal:*", 100).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()
		members, err := s.rdb.SMembers(ctx, setKey).Result()
		if err != nil {
			return removed, mapError(err)
		}
		for _, hash := range members {
			raw, err := s.rdb.HGet(ctx, s.tokenKey(hash), "expires_at").Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return removed, mapError(err)
			}
			if err == nil {
				expiresAt, perr := time.Parse(time.RFC3339Nano, raw)
				if perr == nil && !expiresAt.Before(before) {
					continue
				}
			}
			_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, s.tokenKey(hash))
				pipe.SRem(ctx, setKey, hash)
				return nil
			})
			if err != nil {
				return removed, mapError(err)
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, mapError(err)
	}
	return removed, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, redis.Nil) {
		return store.ErrRefreshTokenNotFound
	}
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
