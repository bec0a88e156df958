package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// brokenHasher cannot hash and records every hash it is asked to compare.
type brokenHasher struct {
	BcryptHasher
	compared []string
}

func (h *brokenHasher) Hash(string) (string, error) {
	return "", errors.New("entropy source unavailable")
}

func (h *brokenHasher) Compare(hash, password string) error {
	h.compared = append(h.compared, hash)
	return h.BcryptHasher.Compare(hash, password)
}

func TestUnknownUserComparesAgainstFallbackHash(t *testing.T) {
	hasher := &brokenHasher{BcryptHasher: BcryptHasher{Cost: bcrypt.MinCost}}
	v := NewCredentialValidator(sqldb.NewCredentialStore(sqldb.OpenTestSQLite(t), sqldb.SQLite, nil), hasher)

	for range 2 {
		_, err := v.Validate(context.Background(), "nobody", "P@ssword1")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	require.Len(t, hasher.compared, 2)
	for _, hash := range hasher.compared {
		assert.Equal(t, fallbackDummyHash, hash)
		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err, "fallback must be a well formed bcrypt hash")
		assert.Equal(t, 10, cost)
	}
}
