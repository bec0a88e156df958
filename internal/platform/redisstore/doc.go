// Package redisstore keeps refresh tokens in Redis. Each token is a hash
// keyed by the SHA-256 of its value with a TTL at its expiry; a per-principal
// set indexes the tokens for revocation. Redemption is a Lua compare-and-set,
// so concurrent MarkUsed calls for one token have exactly one winner.
package redisstore
