package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
)

// RateLimiter enforces fixed-window request limits backed by Redis.
// When Redis is unavailable the limiter fails open so chat and
// comment traffic is never blocked by an infra outage.
type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// Allow increments the counter for key and reports whether the caller
// is still within limit for the window.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if l == nil || l.rdb == nil {
		return true
	}

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, window)
	}
	return count <= int64(limit)
}

// Limit returns a middleware allowing limit requests per window per
// caller, keyed by user ID when authenticated and client IP otherwise.
func (l *RateLimiter) Limit(name string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var key string
		if userID := GetUserID(c); userID != 0 {
			key = fmt.Sprintf("ratelimit:%s:u:%d", name, userID)
		} else {
			key = fmt.Sprintf("ratelimit:%s:ip:%s", name, c.IP())
		}

		if !l.Allow(c.UserContext(), key, limit, window) {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.Fail("too many requests, slow down"))
		}
		return c.Next()
	}
}
