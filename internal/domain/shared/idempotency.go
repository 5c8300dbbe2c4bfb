package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs have been handled so a
// redelivered event is processed at most once per TTL window.
type IdempotencyStore interface {
	// MarkProcessed records the event ID with a TTL. It reports true
	// when the ID was newly recorded, false when it was already there.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event ID was already recorded
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases the store's resources
	Close() error
}

// IdempotencyConfig tunes duplicate suppression for event handlers
type IdempotencyConfig struct {
	// TTL bounds how long a processed event ID is remembered. After it
	// expires the same ID would be handled again.
	TTL time.Duration

	// Enabled turns the duplicate check off entirely when false
	Enabled bool
}

// DefaultIdempotencyConfig keeps processed IDs for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
