package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter() (*Limiter, *time.Time) {
	l := NewLimiter([]byte("rate-limit-secret"))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestConsume_AllowsUpToCeiling(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 20; i++ {
		assert.True(t, l.Consume("drop-post-ip", "203.0.113.9", 20, time.Minute), "request %d should be allowed", i+1)
	}
	assert.False(t, l.Consume("drop-post-ip", "203.0.113.9", 20, time.Minute), "request 21 should be denied")
}

func TestConsume_WindowReset(t *testing.T) {
	l, now := newTestLimiter()

	for i := 0; i < 5; i++ {
		l.Consume("drop-get-ip", "203.0.113.9", 5, time.Minute)
	}
	assert.False(t, l.Consume("drop-get-ip", "203.0.113.9", 5, time.Minute))

	// Window elapses; the bucket resets lazily on next access.
	*now = now.Add(time.Minute)
	assert.True(t, l.Consume("drop-get-ip", "203.0.113.9", 5, time.Minute))
}

func TestConsume_ScopesIndependent(t *testing.T) {
	l, _ := newTestLimiter()

	assert.True(t, l.Consume("drop-post-ip", "203.0.113.9", 1, time.Minute))
	assert.False(t, l.Consume("drop-post-ip", "203.0.113.9", 1, time.Minute))

	// Same identifier, different scope: separate bucket.
	assert.True(t, l.Consume("drop-get-ip", "203.0.113.9", 1, time.Minute))
}

func TestConsume_IdentifiersIndependent(t *testing.T) {
	l, _ := newTestLimiter()

	assert.True(t, l.Consume("drop-post-ip", "203.0.113.9", 1, time.Minute))
	assert.True(t, l.Consume("drop-post-ip", "203.0.113.10", 1, time.Minute))
}

func TestConsume_EmptyIdentifierStillLimited(t *testing.T) {
	l, _ := newTestLimiter()

	assert.True(t, l.Consume("drop-post-ip", "", 1, time.Minute))
	assert.False(t, l.Consume("drop-post-ip", "", 1, time.Minute))
}

func TestConsume_KeysAreHashed(t *testing.T) {
	l, _ := newTestLimiter()

	l.Consume("drop-post-ip", "203.0.113.9", 1, time.Minute)
	l.Consume("drop-post-token", "some-drop-token", 1, time.Minute)

	for key := range l.buckets {
		assert.NotContains(t, key, "203.0.113.9")
		assert.NotContains(t, key, "some-drop-token")
	}
}

func TestPrune_RemovesOnlyElapsedBuckets(t *testing.T) {
	l, now := newTestLimiter()

	l.Consume("drop-post-ip", "stale", 5, time.Minute)
	*now = now.Add(2 * time.Minute)
	l.Consume("drop-post-ip", "fresh", 5, time.Minute)

	removed := l.Prune()
	assert.Equal(t, 1, removed)
	assert.Len(t, l.buckets, 1)

	// Pruning is memory hygiene only; the surviving window still counts.
	for i := 0; i < 4; i++ {
		assert.True(t, l.Consume("drop-post-ip", "fresh", 5, time.Minute))
	}
	assert.False(t, l.Consume("drop-post-ip", "fresh", 5, time.Minute))
}

func TestConsume_Concurrent(t *testing.T) {
	l := NewLimiter([]byte("rate-limit-secret"))

	const workers = 50
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() {
			results <- l.Consume("drop-post-token", "shared-token", 10, time.Minute)
		}()
	}

	allowed := 0
	for i := 0; i < workers; i++ {
		if <-results {
			allowed++
		}
	}
	assert.Equal(t, 10, allowed)
}
