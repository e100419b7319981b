package out

import (
	"context"
	"time"
)

// ListingCache caches rendered listings. Writers invalidate a whole
// namespace by bumping its version counter; readers stamp the current
// version into every key.
type ListingCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Version(ctx context.Context, key string) (int64, error)
	BumpVersion(ctx context.Context, key string) error
}
