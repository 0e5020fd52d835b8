package service

import (
	"context"
	"time"
)

// LimitDecision is the outcome of a single rate limit check.
type LimitDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // zero when Allowed
}

// LoginLimiter counts login attempts per client key over a fixed window.
type LoginLimiter interface {
	// Allow records one attempt for key and reports whether it fits the budget.
	Allow(ctx context.Context, key string) (LimitDecision, error)
}
