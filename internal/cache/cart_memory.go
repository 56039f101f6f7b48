package cache

import (
	"context"
	"sort"
	"sync"
)

// MemoryCart is an in-memory implementation of Cart.
// Use this for development/testing or single-instance deployments.
type MemoryCart struct {
	mu    sync.RWMutex
	carts map[string]map[int64]struct{}
}

// NewMemoryCart creates an empty in-memory cart store.
func NewMemoryCart() *MemoryCart {
	return &MemoryCart{
		carts: make(map[string]map[int64]struct{}),
	}
}

// Add queues items for a user.
func (c *MemoryCart) Add(ctx context.Context, userID string, itemIDs ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart, ok := c.carts[userID]
	if !ok {
		cart = make(map[int64]struct{})
		c.carts[userID] = cart
	}
	for _, id := range itemIDs {
		cart[id] = struct{}{}
	}
	return nil
}

// List returns the queued item IDs for a user, in ascending order.
func (c *MemoryCart) List(ctx context.Context, userID string) ([]int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cart := c.carts[userID]
	ids := make([]int64, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// RemoveMany removes the given items from a user's cart.
func (c *MemoryCart) RemoveMany(ctx context.Context, userID string, itemIDs []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart, ok := c.carts[userID]
	if !ok {
		return nil
	}
	for _, id := range itemIDs {
		delete(cart, id)
	}
	if len(cart) == 0 {
		delete(c.carts, userID)
	}
	return nil
}

// Clear empties a user's cart.
func (c *MemoryCart) Clear(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.carts, userID)
	return nil
}

// Ensure MemoryCart implements Cart
var _ Cart = (*MemoryCart)(nil)
