package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken is a signed, stateless credential. Its validity is decided by
// signature and expiry alone.
type AccessToken struct {
	Value     string    `json:"token"`
	Subject   uuid.UUID `json:"-"`
	Roles     []string  `json:"-"`
	IssuedAt  time.Time `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RefreshToken is an opaque, stateful credential used only to mint new
// access tokens. Value is returned to the client once and stored hashed.
type RefreshToken struct {
	Value     string
	OwnerID   uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	Used      bool
}

// Expired reports whether the token is past its expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Active reports whether the token can still be redeemed at now.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Used && !t.Expired(now)
}

// TokenPair is what login and refresh exchange hand back to the client.
type TokenPair struct {
	AccessToken  *AccessToken
	RefreshToken *RefreshToken
}
