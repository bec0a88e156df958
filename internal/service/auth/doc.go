// Package auth implements credential validation, access token signing and
// refresh-token rotation.
//
// Access tokens are HS256 JWTs carrying the subject, roles, issuer and
// expiry; they are never stored. Refresh tokens are opaque random values
// stored only as a hash and redeemed at most once through the store's
// compare-and-set. A refresh exchange needs the previous access token, which
// may be expired but must carry a valid signature.
package auth
