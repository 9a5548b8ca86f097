// internal/mailbox/cache.go
package mailbox

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CountCache is a cache-aside layer for per-recipient unread counts. All
// methods are nil-receiver safe and degrade silently; the store stays the
// source of truth.
type CountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCountCache(client *redis.Client, ttl time.Duration) *CountCache {
	return &CountCache{client: client, ttl: ttl}
}

func unreadKey(recipientID string) string {
	return fmt.Sprintf("unread:%s", recipientID)
}

// Get returns the cached count and whether it was present.
func (c *CountCache) Get(ctx context.Context, recipientID string) (int, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, unreadKey(recipientID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (c *CountCache) Set(ctx context.Context, recipientID string, count int) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, unreadKey(recipientID), count, c.ttl).Err()
}

// Invalidate drops the cached count after any write to the mailbox.
func (c *CountCache) Invalidate(ctx context.Context, recipientID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, unreadKey(recipientID)).Err()
}
