package worker

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/connect360/tagdrop/store"
)

// ExpirySweeper keeps the stored message set bounded without relying on
// reads to self-clean. Reads already filter expired rows, so the sweeper is
// purely hygiene; a failed sweep costs nothing but disk until the next tick.
type ExpirySweeper struct {
	tagdropStore store.TagdropStore
	interval     time.Duration
	batchSize    int

	// At most one sweep at a time; a tick that fires mid-sweep is skipped
	// rather than queued.
	inProgress atomic.Bool

	// Throttles delete batches so draining a large backlog cannot saturate
	// the database.
	batchLimiter *rate.Limiter
}

const maxPurgeBatchesPerSecond = 10

func NewExpirySweeper(tagdropStore store.TagdropStore, interval time.Duration, batchSize int) *ExpirySweeper {
	return &ExpirySweeper{
		tagdropStore: tagdropStore,
		interval:     interval,
		batchSize:    batchSize,
		batchLimiter: rate.NewLimiter(rate.Limit(maxPurgeBatchesPerSecond), 1),
	}
}

// Run sweeps once immediately, then on every interval tick until ctx is
// cancelled.
func (sw *ExpirySweeper) Run(ctx context.Context) {
	sw.sweep(ctx)

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep drains the entire expired backlog in bounded batches and returns the
// number of rows deleted. Returns 0 without touching the store if another
// sweep is still running.
func (sw *ExpirySweeper) Sweep(ctx context.Context) int {
	return sw.sweep(ctx)
}

func (sw *ExpirySweeper) sweep(ctx context.Context) int {
	if !sw.inProgress.CompareAndSwap(false, true) {
		return 0
	}
	defer sw.inProgress.Store(false)

	totalDeleted := 0
	for {
		if err := sw.batchLimiter.Wait(ctx); err != nil {
			return totalDeleted
		}

		deleted, err := sw.tagdropStore.PurgeExpiredDropMessages(ctx, sw.batchSize)
		if err != nil {
			// Sweeps are idempotent; the next tick retries from scratch.
			log.Printf("drop expiry sweep failed: %v", err)
			return totalDeleted
		}
		totalDeleted += deleted

		if deleted < sw.batchSize {
			break
		}
	}

	if totalDeleted > 0 {
		log.Printf("drop expiry sweep deleted %d messages", totalDeleted)
	}
	return totalDeleted
}
