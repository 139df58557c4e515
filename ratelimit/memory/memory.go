// Package memory implements a process-local fixed-window rate limiter.
// State lives from process start to process end and is never persisted.
package memory

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

type Limiter struct {
	secret []byte

	mu      sync.Mutex
	buckets map[string]*bucket

	// now is swappable in tests.
	now func() time.Time
}

func NewLimiter(secret []byte) *Limiter {
	return &Limiter{
		secret:  secret,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// hashIdentifier keys the bucket map by an HMAC of the raw identifier so a
// heap dump or log never exposes client IPs or drop tokens.
func (l *Limiter) hashIdentifier(value string) string {
	if value == "" {
		value = "unknown"
	}
	mac := hmac.New(sha256.New, l.secret)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

func (l *Limiter) Consume(scope string, rawIdentifier string, maxInWindow int, window time.Duration) bool {
	key := scope + ":" + l.hashIdentifier(rawIdentifier)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.buckets[key]
	if !ok || !current.resetAt.After(now) {
		// Lazy window reset: an elapsed bucket restarts on next access.
		l.buckets[key] = &bucket{count: 1, resetAt: now.Add(window)}
		return true
	}

	if current.count >= maxInWindow {
		return false
	}

	current.count++
	return true
}

// Prune drops buckets whose window has already elapsed. Correctness does not
// depend on this; Consume resets stale buckets lazily. It only bounds memory.
func (l *Limiter) Prune() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if !b.resetAt.After(now) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

const pruneInterval = 5 * time.Minute

// Run prunes stale buckets periodically until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Prune()
		case <-ctx.Done():
			return
		}
	}
}
