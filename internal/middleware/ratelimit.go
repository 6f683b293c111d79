package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = time.Minute

// RateLimit caps requests per client IP per minute using a Redis counter
// under prefix. It is a no-op without Redis or when maxPerMin <= 0, and fails
// open on cache errors.
func RateLimit(cache *redis.Client, prefix string, maxPerMin int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil || maxPerMin <= 0 {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		key := "rl:" + prefix + ":" + c.IP()
		var incr *redis.IntCmd
		var ttl *redis.DurationCmd
		if _, err := cache.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			ttl = pipe.TTL(ctx, key)
			return nil
		}); err != nil {
			return c.Next()
		}

		// Every window carries a TTL, including one whose earlier EXPIRE was lost.
		if ttl.Val() < 0 {
			if err := cache.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
				return c.Next()
			}
		}
		if incr.Val() > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
		}
		return c.Next()
	}
}
