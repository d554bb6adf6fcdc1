package warnings

import (
	"context"
	"sync"
	"testing"

	"github.com/PancyStudios/PancyModBot/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	backend, err := storage.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return NewLedger(backend)
}

func TestIncrementCounts(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	for i := 1; i <= 4; i++ {
		n, err := l.Increment(ctx, "g1", "m1")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	n, err := l.Get(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	other, err := l.Get(ctx, "g2", "m1")
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestDecrementFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	n, err := l.Decrement(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, _ = l.Increment(ctx, "g1", "m1")
	n, _ = l.Decrement(ctx, "g1", "m1")
	assert.Zero(t, n)
	n, _ = l.Decrement(ctx, "g1", "m1")
	assert.Zero(t, n)
}

func TestRemoveRefusesEmptyCount(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	_, err := l.Remove(ctx, "g1", "m1")
	assert.ErrorIs(t, err, ErrNone)

	_, _ = l.Increment(ctx, "g1", "m1")
	_, _ = l.Increment(ctx, "g1", "m1")
	n, err := l.Remove(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConcurrentRemoveNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	for i := 0; i < 3; i++ {
		_, _ = l.Increment(ctx, "g1", "m1")
	}

	var mu sync.Mutex
	removed := 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Remove(ctx, "g1", "m1"); err == nil {
				mu.Lock()
				removed++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrNone)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, removed)
	n, err := l.Get(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConcurrentMixedUpdates(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	const incs, decs = 40, 15
	var wg sync.WaitGroup
	for i := 0; i < incs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Increment(ctx, "g1", "m1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	for i := 0; i < decs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Decrement(ctx, "g1", "m1")
			assert.NoError(t, err)
		}()
	}
	// other keys in parallel must not interfere
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Increment(ctx, "g2", "m9")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, _ := l.Get(ctx, "g1", "m1")
	assert.Equal(t, incs-decs, n)
	n, _ = l.Get(ctx, "g2", "m9")
	assert.Equal(t, 10, n)
}

func TestGuildSnapshot(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	_, _ = l.Increment(ctx, "g1", "a")
	_, _ = l.Increment(ctx, "g1", "b")
	_, _ = l.Increment(ctx, "g1", "b")

	snap, err := l.Guild(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, snap)
}
