package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter counts hits per fixed time window. The window index is part of
// the key, so a counter never outlives its window and refreshing the TTL on
// every hit is harmless.
type RateLimiter struct {
	client RedisClient
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(client RedisClient, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow records a hit on key and reports whether it is within the limit.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := r.now().UnixNano() / int64(r.window)
	count, err := r.client.IncrWithTTL(ctx, fmt.Sprintf("%s:%d", key, bucket), r.window)
	if err != nil {
		return false, err
	}
	return count <= int64(r.limit), nil
}

// AllowCommand limits one user's use of one command.
func (r *RateLimiter) AllowCommand(ctx context.Context, userID int64, command string) (bool, error) {
	return r.Allow(ctx, UserCommandKey(userID, command))
}

func UserCommandKey(userID int64, command string) string {
	return fmt.Sprintf("rate_limit:%d:%s", userID, command)
}
