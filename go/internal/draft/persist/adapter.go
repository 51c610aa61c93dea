// Package persist mirrors committed room state to durable storage and feeds
// remote writes back into the room stores as validated mutation requests.
// Nothing in this package writes to canonical in-memory state directly, and
// draft correctness never depends on a single persistence commit succeeding:
// failures are retried with backoff while the stores keep operating.
package persist

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/draft/room"
)

// Adapter is the durable-store capability the draft core depends on. The
// commit-notify core has no dependency on any particular storage
// technology; PostgresStore is the production implementation.
type Adapter interface {
	// SaveSnapshot upserts the latest committed state for a room.
	SaveSnapshot(ctx context.Context, snap room.Snapshot) error
	// AppendEvent appends one committed event to the durable log.
	AppendEvent(ctx context.Context, env events.Envelope) error
	// LoadSnapshot reads the last persisted state for a room, for recovery.
	LoadSnapshot(ctx context.Context, roomID uuid.UUID) (*room.State, error)
}

// RemoteSource surfaces writes made elsewhere (another instance, manual
// administrative edits) as inbound events. Consumers apply them through
// Store.UpdateState, never as direct writes.
type RemoteSource interface {
	Events(ctx context.Context) (<-chan events.Envelope, error)
}
