package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter shared by every API instance that
// points at the same Redis.
type RateLimiter struct {
	client *Client
	prefix string
	limit  int
	window time.Duration
}

func NewRateLimiter(c *Client, prefix string, limit int, window time.Duration) *RateLimiter {
	if prefix == "" {
		prefix = "bloghub:ratelimit"
	}

	return &RateLimiter{
		client: c,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow counts one hit for key. When the limit is exceeded it also reports
// how long until the window resets.
//
// The counter and its TTL are read in one transaction, and any counter
// found without a TTL gets one, so a lost EXPIRE cannot pin a key forever.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.prefix, key)
	rdb := rl.client.redisdb

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)

	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.TTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w", err)
	}

	count := incr.Val()
	remaining := ttl.Val()

	// -1: the key exists without an expiry
	if remaining < 0 {
		if err := rdb.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expire: %w", err)
		}
		remaining = rl.window
	}

	if count <= int64(rl.limit) {
		return true, 0, nil
	}

	return false, remaining, nil
}
