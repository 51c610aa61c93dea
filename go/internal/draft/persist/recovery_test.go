package persist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecoverySource serves canned snapshots and trailing events.
type fakeRecoverySource struct {
	rooms  []PersistedRoom
	events map[uuid.UUID][]events.Envelope
}

func (f *fakeRecoverySource) ListUnfinished(ctx context.Context) ([]PersistedRoom, error) {
	return f.rooms, nil
}

func (f *fakeRecoverySource) FetchSince(ctx context.Context, roomID uuid.UUID, since time.Time, limit int) ([]events.Envelope, error) {
	var out []events.Envelope
	for _, env := range f.events[roomID] {
		if env.Timestamp.After(since) {
			out = append(out, env)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// persistedActiveRoom drives a live store through start and one pick, then
// hands back its state the way a snapshot write would have captured it.
func persistedActiveRoom(t *testing.T) (*room.State, models.Room, uuid.UUID) {
	t.Helper()
	rm := testRoom(2)
	st := room.NewStore(rm, clockwork.NewFakeClock(), nil)
	_, err := st.Start()
	require.NoError(t, err)

	firstPlayer := uuid.New()
	_, _, err = st.SubmitPick(room.ProposedPick{
		PickNumber: 1,
		PlayerID:   firstPlayer,
		PlayerName: "First Pick",
		Position:   models.PositionWR,
		PickedBy:   rm.Participants[0].ID,
	})
	require.NoError(t, err)
	return st.Snapshot().State, rm, firstPlayer
}

func TestRecoverRebuildsUnfinishedRooms(t *testing.T) {
	state, rm, _ := persistedActiveRoom(t)
	savedAt := time.Now().Add(-time.Minute)

	// The event log trails the snapshot by one committed pick.
	trailing, err := events.NewEnvelope(rm.ID, events.TypePickMade, savedAt.Add(time.Second), events.PickMadePayload{
		PickNumber:    2,
		Round:         1,
		ParticipantID: rm.Participants[1].ID,
		PlayerID:      uuid.New(),
		PlayerName:    "Second Pick",
		Position:      string(models.PositionWR),
	})
	require.NoError(t, err)

	src := &fakeRecoverySource{
		rooms:  []PersistedRoom{{State: state, SavedAt: savedAt}},
		events: map[uuid.UUID][]events.Envelope{rm.ID: {trailing}},
	}
	registry := room.NewRegistry(clockwork.NewFakeClock(), nil)

	var attached []uuid.UUID
	restored, err := Recover(context.Background(), src, registry, func(st *room.Store) {
		attached = append(attached, st.Room().ID)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, restored)
	assert.Equal(t, []uuid.UUID{rm.ID}, attached)

	st, ok := registry.Get(rm.ID)
	require.True(t, ok, "restored room must be registered")

	snap := st.Snapshot()
	assert.Equal(t, models.RoomStatusCompleted, snap.State.Room.Status, "replaying the final pick completes the one-round draft")
	require.Len(t, snap.State.History, 2)
	assert.Equal(t, "Second Pick", snap.State.History[1].PlayerName)
}

func TestRecoverSkipsEventsTheSnapshotContains(t *testing.T) {
	state, rm, firstPlayer := persistedActiveRoom(t)
	savedAt := time.Now().Add(-time.Minute)

	// A log entry for the pick the snapshot already holds rejects as a
	// duplicate and must not fail recovery.
	stale, err := events.NewEnvelope(rm.ID, events.TypePickMade, savedAt.Add(time.Second), events.PickMadePayload{
		PickNumber:    1,
		Round:         1,
		ParticipantID: rm.Participants[0].ID,
		PlayerID:      firstPlayer,
		PlayerName:    "First Pick",
		Position:      string(models.PositionWR),
	})
	require.NoError(t, err)

	src := &fakeRecoverySource{
		rooms:  []PersistedRoom{{State: state, SavedAt: savedAt}},
		events: map[uuid.UUID][]events.Envelope{rm.ID: {stale}},
	}
	registry := room.NewRegistry(clockwork.NewFakeClock(), nil)

	restored, err := Recover(context.Background(), src, registry, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	st, ok := registry.Get(rm.ID)
	require.True(t, ok)
	snap := st.Snapshot()
	assert.Equal(t, models.RoomStatusActive, snap.State.Room.Status)
	require.Len(t, snap.State.History, 1, "stale replay must not duplicate the pick")
}

func TestRecoverNothingPersisted(t *testing.T) {
	src := &fakeRecoverySource{}
	registry := room.NewRegistry(clockwork.NewFakeClock(), nil)

	restored, err := Recover(context.Background(), src, registry, func(*room.Store) {
		t.Fatal("attach must not run with nothing to restore")
	})
	require.NoError(t, err)
	assert.Equal(t, 0, restored)
	assert.Empty(t, registry.List())
}
