package shared

import (
	"context"
	"time"
)

// IdempotencyStore records processed keys so an operation runs at most once
// per key within the TTL.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release removes a key so the operation can be retried
	Release(ctx context.Context, key string) error

	Close() error
}
