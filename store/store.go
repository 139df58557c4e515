package store

import (
	"context"
	"errors"

	"github.com/connect360/tagdrop/models"
)

type TagdropStore interface {
	// InsertDropMessage atomically inserts a message for tokenHash, but only
	// if the per-token daily cap and cooldown both hold at insert time. The
	// check and the insert are one statement; concurrent callers cannot both
	// observe "under the cap" and breach it. Returns whether a row was
	// actually inserted.
	InsertDropMessage(ctx context.Context, tokenHash string, sanitizedContent string) (bool, error)

	// FetchActiveDropMessages returns the newest unexpired messages for
	// tokenHash, at most limit rows. Rows past their expiry are never
	// returned, even before the sweeper has physically deleted them.
	FetchActiveDropMessages(ctx context.Context, tokenHash string, limit int) ([]models.DropMessage, error)

	// PurgeExpiredDropMessages deletes up to batchSize expired rows, soonest
	// expiry first, and returns how many were deleted. A return value below
	// batchSize means the expired backlog is exhausted.
	PurgeExpiredDropMessages(ctx context.Context, batchSize int) (int, error)

	GetTagByCode(ctx context.Context, code string) (models.Tag, error)
}

// Custom error types for clarity
var (
	ErrItemNotFound = errors.New("item does not exist")
)
