package nsapi

import (
	"context"
	"sync"
	"time"
)

// #region rate-limiter
// RateLimiter is a fixed-window request budget shared by every call a Client
// makes. NationStates allows 50 requests per 30 seconds.
type RateLimiter struct {
	mu        sync.Mutex
	maxRate   int
	window    time.Duration
	tokens    int
	lastReset time.Time
	now       func() time.Time
}

// NewRateLimiter creates a rate limiter allowing maxRate requests per window.
func NewRateLimiter(maxRate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRate: maxRate,
		window:  window,
		now:     time.Now,
	}
}

// Allow takes one token if the current window has any left.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if rl.lastReset.IsZero() || now.Sub(rl.lastReset) >= rl.window {
		rl.tokens = rl.maxRate - 1
		rl.lastReset = now
		return true
	}
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// RetryAfter returns how long until the current window resets.
func (rl *RateLimiter) RetryAfter() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.lastReset.IsZero() {
		return 0
	}
	remaining := rl.window - rl.now().Sub(rl.lastReset)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.Allow() {
			return nil
		}
		timer := time.NewTimer(rl.RetryAfter())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// #endregion rate-limiter
