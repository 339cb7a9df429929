package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAddAccumulates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	qty, err := m.Add(ctx, "sess-1", 1, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	qty, err = m.Add(ctx, "sess-1", 1, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, qty)

	contents, err := m.Get(ctx, "sess-1", 1)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{7: 5}, contents)
}

func TestMemorySetQuantity(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Add(ctx, "sess-1", 1, 7, 10)
	require.NoError(t, err)

	require.NoError(t, m.SetQuantity(ctx, "sess-1", 1, 7, 4))

	contents, err := m.Get(ctx, "sess-1", 1)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{7: 4}, contents)
}

func TestMemoryCartsAreIsolated(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Add(ctx, "sess-1", 1, 7, 1)
	require.NoError(t, err)
	_, err = m.Add(ctx, "sess-1", 2, 7, 2)
	require.NoError(t, err)
	_, err = m.Add(ctx, "sess-2", 1, 7, 3)
	require.NoError(t, err)

	c1, err := m.Get(ctx, "sess-1", 1)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{7: 1}, c1)

	c2, err := m.Get(ctx, "sess-1", 2)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{7: 2}, c2)

	c3, err := m.Get(ctx, "sess-2", 1)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{7: 3}, c3)
}

func TestMemoryClear(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Add(ctx, "sess-1", 1, 7, 2)
	require.NoError(t, err)

	require.NoError(t, m.Clear(ctx, "sess-1", 1))

	contents, err := m.Get(ctx, "sess-1", 1)
	require.NoError(t, err)
	assert.Empty(t, contents)

	// Clearing an absent cart is fine.
	require.NoError(t, m.Clear(ctx, "sess-9", 1))
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Add(ctx, "sess-1", 1, 7, 2)
	require.NoError(t, err)

	contents, err := m.Get(ctx, "sess-1", 1)
	require.NoError(t, err)
	contents[7] = 100

	again, err := m.Get(ctx, "sess-1", 1)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{7: 2}, again)
}
