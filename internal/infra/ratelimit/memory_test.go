package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piquante/config"
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
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryLimiter_BlocksAfterBudget(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := newMemoryLimiter(5*time.Minute, 10, clock.Now)
	ctx := context.Background()

	for i := range 10 {
		d, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "attempt %d", i+1)
		assert.Equal(t, 9-i, d.Remaining)
	}

	clock.Advance(time.Minute)
	d, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 4*time.Minute, d.RetryAfter)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := newMemoryLimiter(time.Minute, 1, clock.Now)
	ctx := context.Background()

	d, _ := limiter.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	d, _ = limiter.Allow(ctx, "a")
	assert.False(t, d.Allowed)

	d, _ = limiter.Allow(ctx, "b")
	assert.True(t, d.Allowed)
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := newMemoryLimiter(time.Minute, 2, clock.Now)
	ctx := context.Background()

	for range 3 {
		_, _ = limiter.Allow(ctx, "k")
	}
	d, _ := limiter.Allow(ctx, "k")
	assert.False(t, d.Allowed)

	clock.Advance(time.Minute)
	d, _ = limiter.Allow(ctx, "k")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}

func TestMemoryLimiter_PrunesExpiredWindows(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := newMemoryLimiter(time.Minute, 5, clock.Now)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_, _ = limiter.Allow(ctx, key)
	}
	assert.Len(t, limiter.windows, 3)

	clock.Advance(2 * time.Minute)
	_, _ = limiter.Allow(ctx, "d")
	assert.Len(t, limiter.windows, 1)
}

func TestMemoryLimiter_ConcurrentAttemptsRespectBudget(t *testing.T) {
	limiter := newMemoryLimiter(time.Hour, 10, time.Now)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := limiter.Allow(ctx, "shared")
			if err == nil && d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestNewMemoryLimiter_Defaults(t *testing.T) {
	limiter := NewMemoryLimiter(&config.Config{})

	assert.Equal(t, 5*time.Minute, limiter.size)
	assert.Equal(t, 10, limiter.maxAttempts)
}
