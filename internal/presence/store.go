// Package presence implements the presence coordination layer: a local view
// of who is online now, derived from a live subscription to a shared
// presence store, plus publication of the session's own record.
package presence

import (
	"context"

	"github.com/mkoval-dev/peercall/internal/domain"
)

// Store is the narrow contract the coordinator depends on. Implementations
// are a NATS JetStream key-value bucket (production) and an in-memory store
// (tests, offline development).
type Store interface {
	// Put writes a presence record keyed by its userID, overwriting any
	// pre-existing record (last writer wins, no merge), and registers the
	// connection-bound lease that removes the record when the writing
	// client stops refreshing it.
	Put(ctx context.Context, rec domain.PresenceRecord) error

	// Remove deletes the record for userID and releases its lease.
	// Idempotent: removing an absent record is not an error.
	Remove(ctx context.Context, userID string) error

	// Watch returns a channel of full snapshots of the collection, one per
	// observed change. The first snapshot reflects the state at subscription
	// time (and may or may not include a just-written record). Delivery is
	// latest-wins: when the consumer lags, intermediate snapshots may be
	// dropped but the most recent one is always delivered. The channel is
	// closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.Snapshot, error)
}
