package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedRateLimiterFirstWaitIsImmediate(t *testing.T) {
	limiter := NewFixedRateLimiter(time.Second)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestFixedRateLimiterWaitsAfterDone(t *testing.T) {
	limiter := NewFixedRateLimiter(50 * time.Millisecond)
	limiter.Done()

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	limiter := NewFixedRateLimiter(time.Minute)
	limiter.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoneDoesNotBlockDuringWait(t *testing.T) {
	limiter := NewFixedRateLimiter(200 * time.Millisecond)
	limiter.Done()

	waiting := make(chan error, 1)
	go func() {
		waiting <- limiter.Wait(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)

	marked := make(chan struct{})
	go func() {
		limiter.Done()
		close(marked)
	}()

	select {
	case <-marked:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Done blocked while Wait was sleeping")
	}

	require.NoError(t, <-waiting)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
