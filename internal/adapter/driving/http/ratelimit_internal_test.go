package httphandler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiter_EvictsIdleBuckets(t *testing.T) {
	limiter := NewPerMinuteLimiter(10, 5)
	require.Equal(t, time.Minute, limiter.idleTTL, "five tokens at ten per minute refill in 30s")

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := range 100 {
		limiter.Allow(fmt.Sprintf("203.0.113.%d", i))
	}
	assert.Len(t, limiter.buckets, 100)

	now = now.Add(30 * time.Second)
	limiter.Allow("198.51.100.1")
	assert.Len(t, limiter.buckets, 101, "buckets younger than the idle window survive")

	now = now.Add(45 * time.Second)
	limiter.Allow("198.51.100.2")
	assert.Len(t, limiter.buckets, 2, "idle buckets are dropped on the next sweep")
	assert.Contains(t, limiter.buckets, "198.51.100.1")
	assert.Contains(t, limiter.buckets, "198.51.100.2")
}

func TestTokenBucketLimiter_EvictionKeepsLimit(t *testing.T) {
	limiter := NewPerMinuteLimiter(1, 2)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("203.0.113.1"))
	assert.True(t, limiter.Allow("203.0.113.1"))
	assert.False(t, limiter.Allow("203.0.113.1"))

	// Two tokens at one per minute refill in two minutes, so the bucket is
	// still tracked one minute later and keeps its partial state.
	now = now.Add(time.Minute + time.Second)
	assert.True(t, limiter.Allow("203.0.113.1"))
	assert.False(t, limiter.Allow("203.0.113.1"))
}
