package middleware

import (
	"fmt"
	"time"

	"hire_server/pkg/apperr"
	"hire_server/pkg/cache"

	"github.com/gofiber/fiber/v2"
)

// RateLimiter is a fixed-window per-client limiter backed by Redis, so
// the limit holds across replicas.
type RateLimiter struct {
	cache  *cache.RedisCache
	limit  int
	window time.Duration
}

func NewRateLimiter(c *cache.RedisCache, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{cache: c, limit: limit, window: window}
}

func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.cache == nil || rl.limit <= 0 {
			return c.Next()
		}

		window := time.Now().Unix() / int64(rl.window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%d", c.IP(), window)

		count, err := rl.cache.Increment(c.Context(), key)
		if err != nil {
			// Redis trouble must not take the API down.
			return c.Next()
		}
		if count == 1 {
			_ = rl.cache.Expire(c.Context(), key, rl.window)
		}

		remaining := rl.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if int(count) > rl.limit {
			return apperr.ErrRateLimited
		}
		return c.Next()
	}
}
