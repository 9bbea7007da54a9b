package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AttemptLimiter throttles login attempts with a fixed Redis window
// keyed by email and caller address. Redis being unreachable fails
// open: authentication must not depend on cache health.
type AttemptLimiter interface {
	Allow(ctx context.Context, email, addr string) (bool, error)
}

type redisAttemptLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *zap.Logger
}

// NewRedisAttemptLimiter builds a limiter over the shared Redis client.
func NewRedisAttemptLimiter(client *redis.Client, limit int, window time.Duration, logger *zap.Logger) AttemptLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &redisAttemptLimiter{client: client, limit: limit, window: window, logger: logger}
}

func (l *redisAttemptLimiter) Allow(ctx context.Context, email, addr string) (bool, error) {
	key := fmt.Sprintf("login_attempts:%s:%s", email, addr)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("attempt limiter unavailable", zap.Error(err))
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("attempt limiter expire failed", zap.Error(err))
		}
	}
	return count <= int64(l.limit), nil
}

// NoopLimiter always allows; used when rate limiting is disabled.
type NoopLimiter struct{}

// Allow implements AttemptLimiter.
func (NoopLimiter) Allow(context.Context, string, string) (bool, error) {
	return true, nil
}
