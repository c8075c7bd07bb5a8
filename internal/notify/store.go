package notify

import (
	"context"

	"theatreops/internal/domain"
)

// SuppressionStore tracks open cool-down windows per unresolved condition.
// Keys identify the condition (entity + event kind); the stored value is the
// severity bucket the condition was last notified at. Implementations must be
// safe for concurrent use: different stream callbacks can race on overlapping
// keys, and a redelivering feed can race two updates to the same key.
type SuppressionStore interface {
	// ActiveBucket returns the severity bucket of the open suppression for
	// key, and whether one is open.
	ActiveBucket(ctx context.Context, key string) (string, bool, error)

	// Open records a suppression for key at the given bucket, replacing any
	// previous bucket.
	Open(ctx context.Context, key string, bucket string) error

	// Clear removes the suppression for key so the next qualifying event
	// notifies again.
	Clear(ctx context.Context, key string) error
}

// Sink receives dispatched notifications. Append-only; the engine never
// updates a written record.
type Sink interface {
	Write(ctx context.Context, n domain.Notification) error
}
