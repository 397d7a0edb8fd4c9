package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const limiterKeyPrefix = "ratelimit:"

// Limiter is a fixed-window request counter shared by every server instance.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter allows limit hits per key in each window.
func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow records one hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := WindowKey(key, l.now(), l.window)
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val() <= int64(l.limit), nil
}

// WindowKey returns the Redis key counting hits for key in the window containing t.
func WindowKey(key string, t time.Time, window time.Duration) string {
	bucket := t.UnixNano() / int64(window)
	return limiterKeyPrefix + key + ":" + strconv.FormatInt(bucket, 10)
}
