package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/rs/zerolog/log"
)

// PersistedRoom is one recoverable room: its last written snapshot and when
// that snapshot landed.
type PersistedRoom struct {
	State   *room.State
	SavedAt time.Time
}

// RecoverySource is the read side of restart recovery. Postgres implements
// it with the room_states table and the room_events log.
type RecoverySource interface {
	ListUnfinished(ctx context.Context) ([]PersistedRoom, error)
	FetchSince(ctx context.Context, roomID uuid.UUID, since time.Time, limit int) ([]events.Envelope, error)
}

// replayBatch bounds one FetchSince page during recovery.
const replayBatch = 500

// Recover rebuilds registry stores for every unfinished room. Snapshot
// writes are asynchronous and can trail the event log, so events committed
// after the snapshot are replayed through the same validated path remote
// writes take; picks the snapshot already contains reject as stale and are
// skipped. attach is invoked once per restored store so the wiring layer
// can reattach its per-room workers. Returns the number of rooms restored.
func Recover(ctx context.Context, src RecoverySource, registry *room.Registry, attach func(*room.Store)) (int, error) {
	rooms, err := src.ListUnfinished(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unfinished rooms: %w", err)
	}

	restored := 0
	for _, pr := range rooms {
		st, err := registry.Restore(pr.State)
		if err != nil {
			return restored, fmt.Errorf("restore room %s: %w", pr.State.Room.ID, err)
		}
		replayed, err := replayTrailingEvents(ctx, src, st, pr)
		if err != nil {
			return restored, err
		}
		if attach != nil {
			attach(st)
		}
		restored++

		log.Info().
			Str("room_id", pr.State.Room.ID.String()).
			Str("status", string(st.Room().Status)).
			Int("picks", len(st.Snapshot().State.History)).
			Int("replayed", replayed).
			Msg("room restored from snapshot")
	}
	return restored, nil
}

func replayTrailingEvents(ctx context.Context, src RecoverySource, st *room.Store, pr PersistedRoom) (int, error) {
	roomID := pr.State.Room.ID
	since := pr.SavedAt
	replayed := 0

	for {
		evs, err := src.FetchSince(ctx, roomID, since, replayBatch)
		if err != nil {
			return replayed, fmt.Errorf("fetch trailing events for room %s: %w", roomID, err)
		}
		if len(evs) == 0 {
			return replayed, nil
		}
		for _, env := range evs {
			if err := applyEnvelope(st, env); err != nil {
				var verr *room.ValidationError
				if errors.As(err, &verr) {
					// Already reflected in the snapshot.
					continue
				}
				return replayed, fmt.Errorf("replay event %s for room %s: %w", env.ID, roomID, err)
			}
			replayed++
		}
		since = evs[len(evs)-1].Timestamp
		if len(evs) < replayBatch {
			return replayed, nil
		}
	}
}
