package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces out consecutive page visits. Done marks the end of an
// action; Wait blocks until the configured delay has passed since then.
type RateLimiter interface {
	Wait(ctx context.Context) error
	Done()
}

type SimpleRateLimiter struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

// NewFixedRateLimiter always waits exactly delay.
func NewFixedRateLimiter(delay time.Duration) *SimpleRateLimiter {
	return &SimpleRateLimiter{delay: delay}
}

func (r *SimpleRateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	last := r.lastAction
	r.mu.Unlock()

	if last.IsZero() {
		return ctx.Err()
	}

	if remaining := r.delay - time.Since(last); remaining > 0 {
		return Sleep(ctx, remaining)
	}

	return ctx.Err()
}

func (r *SimpleRateLimiter) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastAction = time.Now()
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
