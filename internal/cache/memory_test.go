package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newMemoryCache(clock.Now)

	require.NoError(t, c.Set(ctx, "session", "u1", time.Minute))
	clock.Advance(59 * time.Second)
	_, err := c.Get(ctx, "session")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = c.Get(ctx, "session")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Empty(t, c.entries)
}

func TestMemoryCache_JSONRoundTripKeepsDecimals(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })

	type payload struct {
		Amount decimal.Decimal `json:"amount"`
	}
	require.NoError(t, c.SetJSON(ctx, "stats", payload{Amount: decimal.RequireFromString("12.35")}, time.Minute))

	var got payload
	require.NoError(t, c.GetJSON(ctx, "stats", &got))
	assert.Equal(t, "12.35", got.Amount.String())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "k", "v", time.Minute)
			_, _ = c.Get(ctx, "k")
			_ = c.Delete(ctx, "k")
		}()
	}
	wg.Wait()
}

func TestMemoryCache_SweepDropsUnreadExpiredEntries(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := newMemoryCache(clock.Now)

	require.NoError(t, c.Set(ctx, "session:a", "u1", time.Minute))
	require.NoError(t, c.Set(ctx, "session:b", "u2", time.Hour))
	require.NoError(t, c.Set(ctx, "pinned", "x", 0))

	assert.Zero(t, c.sweep())

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.sweep())
	assert.Len(t, c.entries, 2)

	clock.Advance(24 * time.Hour)
	assert.Equal(t, 1, c.sweep())
	assert.Len(t, c.entries, 1)
	_, err := c.Get(ctx, "pinned")
	assert.NoError(t, err)
}

func TestMemoryCache_SweepLoopStopsOnClose(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := newMemoryCache(clock.Now)
	require.NoError(t, c.Set(ctx, "session:a", "u1", time.Second))
	clock.Advance(time.Minute)

	stopped := make(chan struct{})
	go func() {
		c.sweepLoop(time.Millisecond)
		close(stopped)
	}()

	assert.Eventually(t, func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return len(c.entries) == 0
	}, time.Second, time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("sweep loop still running after Close")
	}
}
