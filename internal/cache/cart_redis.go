package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// cartKeyPrefix namespaces cart keys in a shared Redis instance.
const cartKeyPrefix = "gemstock:cart:"

// RedisCart is a Redis-backed implementation of Cart. Each user's cart is a
// Redis set of inventory item IDs, shared across API instances. SREM makes
// removal naturally idempotent, which is what the at-least-once cart
// clearing after a print job relies on.
type RedisCart struct {
	client *redis.Client
}

// NewRedisCart wraps an existing Redis client.
func NewRedisCart(client *redis.Client) *RedisCart {
	return &RedisCart{client: client}
}

func cartKey(userID string) string {
	return cartKeyPrefix + userID
}

// Add queues items for a user.
func (c *RedisCart) Add(ctx context.Context, userID string, itemIDs ...int64) error {
	if len(itemIDs) == 0 {
		return nil
	}

	members := make([]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		members[i] = strconv.FormatInt(id, 10)
	}

	if err := c.client.SAdd(ctx, cartKey(userID), members...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return nil
}

// List returns the queued item IDs for a user.
func (c *RedisCart) List(ctx context.Context, userID string) ([]int64, error) {
	members, err := c.client.SMembers(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			log.Printf("[RedisCart] Skipping malformed cart member %q for user %s", m, userID)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RemoveMany removes the given items from a user's cart.
func (c *RedisCart) RemoveMany(ctx context.Context, userID string, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}

	members := make([]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		members[i] = strconv.FormatInt(id, 10)
	}

	if err := c.client.SRem(ctx, cartKey(userID), members...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return nil
}

// Clear empties a user's cart.
func (c *RedisCart) Clear(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return nil
}

// Ensure RedisCart implements Cart
var _ Cart = (*RedisCart)(nil)
