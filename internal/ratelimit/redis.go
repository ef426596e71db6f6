package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps fixed-window counters in Redis so limits hold across
// API replicas.
type RedisLimiter struct {
	client *redis.Client
	opts   Options
}

func NewRedisLimiter(client *redis.Client, opts Options) *RedisLimiter {
	return &RedisLimiter{client: client, opts: opts.withDefaults()}
}

func (l *RedisLimiter) AllowIP(ctx context.Context, ip, purpose string) (bool, error) {
	key := ipKey(purpose, ip)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	// first hit opens the window
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.opts.Window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(l.opts.Limit), nil
}

func (l *RedisLimiter) AcquireEmailCooldown(ctx context.Context, email string) (bool, error) {
	ok, err := l.client.SetNX(ctx, emailKey(email), "1", l.opts.EmailCooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set email cooldown: %w", err)
	}
	return ok, nil
}
