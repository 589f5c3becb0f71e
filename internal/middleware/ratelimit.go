package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/apperr"
)

// RateLimiter is a fixed-window limiter keyed by client IP. Once a client
// exceeds limit requests in window it is blocked for blockDuration. Redis
// errors let the request through, and a nil client disables limiting.
func RateLimiter(rdb *redis.Client, limit int, window, blockDuration time.Duration, keyPrefix string, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || limit <= 0 {
			return c.Next()
		}

		ctx := c.UserContext()
		key := keyPrefix + ":ip:" + c.IP()
		blockKey := key + ":blocked"

		if blocked, _ := rdb.Get(ctx, blockKey).Result(); blocked == "1" {
			ttl, _ := rdb.TTL(ctx, blockKey).Result()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(ttl.Seconds())))
			return tooManyRequests()
		}

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			rdb.Set(ctx, blockKey, "1", blockDuration)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(blockDuration.Seconds())))
			return tooManyRequests()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(limit-int(count)))
		return c.Next()
	}
}

func tooManyRequests() error {
	return &apperr.Error{Kind: apperr.KindTooManyRequests, Message: "too many requests, try again later"}
}
