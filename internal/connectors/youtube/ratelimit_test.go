package youtube

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	r := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})
	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestRateLimiter_BackoffHonoursContext(t *testing.T) {
	r := NewRateLimiter()
	r.RecordRateLimitError(time.Minute)
	assert.False(t, r.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := r.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_DefaultBackoff(t *testing.T) {
	r := NewRateLimiter()
	r.RecordRateLimitError(0)
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.WithinDuration(t, time.Now().Add(30*time.Second), r.retryAt, time.Second)
}
