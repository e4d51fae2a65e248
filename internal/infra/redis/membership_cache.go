package redis

import (
	"context"
	"fmt"
	"time"
)

// MembershipCache remembers users seen as members of the required channel,
// saving a getChatMember call per update. Only positive answers are cached:
// a user who just joined must not wait for a stale "left" to expire.
type MembershipCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewMembershipCache(client RedisClient, ttl time.Duration) *MembershipCache {
	return &MembershipCache{client: client, ttl: ttl}
}

func (c *MembershipCache) Joined(ctx context.Context, userID int64) (bool, error) {
	return c.client.Exists(ctx, membershipKey(userID))
}

func (c *MembershipCache) RememberJoined(ctx context.Context, userID int64) error {
	return c.client.SetWithTTL(ctx, membershipKey(userID), "1", c.ttl)
}

func membershipKey(userID int64) string {
	return fmt.Sprintf("member:%d", userID)
}
