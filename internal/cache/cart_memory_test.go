package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCartAddList(t *testing.T) {
	ctx := context.Background()
	cart := NewMemoryCart()

	require.NoError(t, cart.Add(ctx, "u1", 3, 1, 2))
	require.NoError(t, cart.Add(ctx, "u1", 2)) // duplicate is a no-op
	require.NoError(t, cart.Add(ctx, "u2", 7))

	ids, err := cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = cart.List(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
}

func TestMemoryCartRemoveMany(t *testing.T) {
	ctx := context.Background()
	cart := NewMemoryCart()
	require.NoError(t, cart.Add(ctx, "u1", 1, 2, 3))

	// Removing absent items alongside present ones succeeds.
	require.NoError(t, cart.RemoveMany(ctx, "u1", []int64{2, 99}))
	require.NoError(t, cart.RemoveMany(ctx, "nobody", []int64{1}))

	ids, err := cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)

	// Removal is idempotent.
	require.NoError(t, cart.RemoveMany(ctx, "u1", []int64{1, 3}))
	require.NoError(t, cart.RemoveMany(ctx, "u1", []int64{1, 3}))

	ids, err = cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryCartClear(t *testing.T) {
	ctx := context.Background()
	cart := NewMemoryCart()
	require.NoError(t, cart.Add(ctx, "u1", 1, 2))
	require.NoError(t, cart.Add(ctx, "u2", 5))

	require.NoError(t, cart.Clear(ctx, "u1"))

	ids, err := cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = cart.List(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids)
}
