package out

import (
	"context"
	"time"
)

// TokenStore tracks revoked auth tokens until their natural expiry.
type TokenStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
