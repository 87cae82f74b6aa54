package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const unreadCountTTL = 12 * time.Hour

// NotificationCache keeps per-user unread counters in Redis so the
// badge count does not hit Postgres on every page load. The counter is
// a cache: on miss or drift it is rebuilt from the repository.
type NotificationCache struct {
	client *redis.Client
	repo   *NotificationRepository
}

// NewNotificationCache creates a cache over the given Redis client.
// A nil client disables caching and every read falls through to the
// repository.
func NewNotificationCache(client *redis.Client, repo *NotificationRepository) *NotificationCache {
	return &NotificationCache{client: client, repo: repo}
}

func unreadCountKey(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}

// UnreadCount returns the unread counter, rebuilding it from Postgres on
// a cache miss.
func (c *NotificationCache) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if c.client == nil {
		return c.repo.CountUnread(ctx, userID)
	}

	count, err := c.client.Get(ctx, unreadCountKey(userID)).Int64()
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, redis.Nil) {
		// Redis trouble must not break the read path
		return c.repo.CountUnread(ctx, userID)
	}

	count, err = c.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	c.client.Set(ctx, unreadCountKey(userID), count, unreadCountTTL)
	return count, nil
}

// Increment bumps the counter after new notifications were stored.
// Counters that are not cached yet stay uncached and get rebuilt on the
// next read instead.
func (c *NotificationCache) Increment(ctx context.Context, userID uuid.UUID, delta int64) {
	if c.client == nil {
		return
	}

	key := unreadCountKey(userID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return
	}
	c.client.IncrBy(ctx, key, delta)
}

// Decrement lowers the counter after a notification was read.
func (c *NotificationCache) Decrement(ctx context.Context, userID uuid.UUID, delta int64) {
	if c.client == nil {
		return
	}

	key := unreadCountKey(userID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return
	}
	c.client.DecrBy(ctx, key, delta)
}

// Invalidate drops the cached counter entirely.
func (c *NotificationCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c.client == nil {
		return
	}
	c.client.Del(ctx, unreadCountKey(userID))
}
