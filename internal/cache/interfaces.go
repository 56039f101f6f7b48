package cache

import "context"

// Cart holds the inventory items a user has queued for the next label print
// run. This abstraction allows swapping between the in-memory cart
// (development/tests) and the Redis cart (production, shared across
// instances) without changing business logic.
//
// Cart state is advisory: printing a job removes the printed items, and the
// removal is at-least-once. A cart entry that survives a crash is harmless
// because RemoveMany is idempotent.
type Cart interface {
	// Add queues items for a user. Already-queued items are ignored.
	Add(ctx context.Context, userID string, itemIDs ...int64) error

	// List returns the queued item IDs for a user.
	List(ctx context.Context, userID string) ([]int64, error)

	// RemoveMany removes the given items from a user's cart. Missing
	// entries are not an error.
	RemoveMany(ctx context.Context, userID string, itemIDs []int64) error

	// Clear empties a user's cart.
	Clear(ctx context.Context, userID string) error
}

// CartError is a sentinel error type for cart operations.
type CartError string

func (e CartError) Error() string { return string(e) }

const (
	// ErrCartUnavailable indicates the backing store cannot be reached.
	ErrCartUnavailable CartError = "cart unavailable"
)
