// Package ratelimit provides fixed-window login limiters.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"piquante/config"
	"piquante/internal/domain/service"
)

const (
	defaultWindow      = 5 * time.Minute
	defaultMaxAttempts = 10
)

type window struct {
	start time.Time
	count int
}

// MemoryLimiter keeps one counter per key in process memory.
type MemoryLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	size        time.Duration
	maxAttempts int
	now         func() time.Time
	lastPrune   time.Time
}

// NewMemoryLimiter creates an in-process limiter from the login limit config.
func NewMemoryLimiter(cfg *config.Config) *MemoryLimiter {
	size, maxAttempts := limits(cfg)

	return newMemoryLimiter(size, maxAttempts, time.Now)
}

func newMemoryLimiter(size time.Duration, maxAttempts int, now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		windows:     make(map[string]*window),
		size:        size,
		maxAttempts: maxAttempts,
		now:         now,
		lastPrune:   now(),
	}
}

var _ service.LoginLimiter = (*MemoryLimiter)(nil)

// Allow counts one attempt for key. Attempts past the budget are still counted
// so a client hammering the endpoint does not extend its own window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (service.LimitDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.size {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++

	if w.count > l.maxAttempts {
		return service.LimitDecision{
			Allowed:    false,
			RetryAfter: w.start.Add(l.size).Sub(now),
		}, nil
	}

	return service.LimitDecision{Allowed: true, Remaining: l.maxAttempts - w.count}, nil
}

// pruneLocked drops expired windows at most once per window length.
func (l *MemoryLimiter) pruneLocked(now time.Time) {
	if now.Sub(l.lastPrune) < l.size {
		return
	}
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.size {
			delete(l.windows, key)
		}
	}
	l.lastPrune = now
}

func limits(cfg *config.Config) (time.Duration, int) {
	size, maxAttempts := defaultWindow, defaultMaxAttempts
	if cfg.LoginLimit != nil {
		if cfg.LoginLimit.Window > 0 {
			size = cfg.LoginLimit.Window
		}
		if cfg.LoginLimit.MaxAttempts > 0 {
			maxAttempts = cfg.LoginLimit.MaxAttempts
		}
	}

	return size, maxAttempts
}
