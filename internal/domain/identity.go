package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Built-in roles seeded by the migrations.
const (
	RoleUser          = "User"
	RoleAdministrator = "Administrator"
)

// Credential is the stored identity of an account.
// PasswordHash never leaves the identity store and the auth service.
type Credential struct {
	PrincipalID        uuid.UUID
	UserName           string
	NormalizedUserName string
	Email              string
	FirstName          string
	LastName           string
	PasswordHash       string
	Roles              []string
	CreatedAt          time.Time
}

// Principal returns the secret-free view of the credential.
func (c *Credential) Principal() *Principal {
	return &Principal{
		ID:       c.PrincipalID,
		UserName: c.UserName,
		Roles:    slices.Clone(c.Roles),
	}
}

// Principal is an authenticated account and its roles.
type Principal struct {
	ID       uuid.UUID `json:"id"`
	UserName string    `json:"userName"`
	Roles    []string  `json:"roles"`
}

// HasRole reports whether the principal holds role (case-insensitive).
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// NormalizeUserName produces the lookup key for a user name.
func NormalizeUserName(userName string) string {
	return strings.ToUpper(strings.TrimSpace(userName))
}
