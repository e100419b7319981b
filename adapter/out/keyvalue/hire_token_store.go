// Package keyvalue implements Redis-backed ports that are plain
// key-value state.
package keyvalue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"hire_server/pkg/cache"
)

const revokedKeyPrefix = "auth:revoked:"

// TokenStore implements out.TokenStore over Redis. Tokens are stored
// hashed; the entry's TTL matches the token's remaining lifetime, so
// revocations clean themselves up.
type TokenStore struct {
	cache *cache.RedisCache
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(c *cache.RedisCache) *TokenStore {
	return &TokenStore{cache: c}
}

func (s *TokenStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return s.cache.Set(ctx, revokedKey(token), "1", ttl)
}

func (s *TokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	return s.cache.Exists(ctx, revokedKey(token))
}

func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedKeyPrefix + hex.EncodeToString(sum[:])
}
