package auth

import (
	"fmt"

	"github.com/phrazzld/hotel-listing-api/internal/domain"
)

// Authentication service errors. Each one unwraps to a domain sentinel so the
// API layer maps them without knowing this package.
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = fmt.Errorf("%w: malformed or unsigned", domain.ErrInvalidToken)

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = fmt.Errorf("%w: expired", domain.ErrInvalidToken)

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf or iat in the future)
	ErrTokenNotYetValid = fmt.Errorf("%w: not yet valid", domain.ErrInvalidToken)

	// ErrWrongIssuer indicates the token was minted by another issuer
	ErrWrongIssuer = fmt.Errorf("%w: unexpected issuer", domain.ErrInvalidToken)

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = fmt.Errorf("%w: missing", domain.ErrInvalidToken)

	// ErrInvalidRefreshToken covers absent, used and expired refresh tokens alike
	ErrInvalidRefreshToken = fmt.Errorf("%w: refresh token rejected", domain.ErrInvalidToken)
)
