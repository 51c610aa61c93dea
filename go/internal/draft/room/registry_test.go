package room

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry(clockwork.NewFakeClock(), nil)
	rm := testRoom(testParticipants(2), 2)

	st, err := reg.Create(rm)
	require.NoError(t, err)
	require.NotNil(t, st)

	got, ok := reg.Get(rm.ID)
	require.True(t, ok)
	assert.Same(t, st, got)

	_, err = reg.Create(rm)
	assert.Error(t, err, "duplicate room ids are rejected")

	_, ok = reg.Get(uuid.New())
	assert.False(t, ok)

	assert.Equal(t, []uuid.UUID{rm.ID}, reg.List())

	reg.Remove(rm.ID)
	_, ok = reg.Get(rm.ID)
	assert.False(t, ok)
	assert.Empty(t, reg.List())
}

func TestRegistryRestore(t *testing.T) {
	reg := NewRegistry(clockwork.NewFakeClock(), nil)
	participants := testParticipants(2)
	rm := testRoom(participants, 1)
	rm.Status = models.RoomStatusActive

	state := NewState(rm)
	state.Version = 7
	state.History = []models.Pick{{
		ID:         uuid.New(),
		RoomID:     rm.ID,
		PickNumber: 1,
		Round:      1,
		PlayerID:   uuid.New(),
		PlayerName: "Restored Pick",
		Position:   models.PositionWR,
		PickedBy:   participants[0].ID,
	}}

	st, err := reg.Restore(state)
	require.NoError(t, err)

	got, ok := reg.Get(rm.ID)
	require.True(t, ok)
	assert.Same(t, st, got)

	snap := st.Snapshot()
	assert.Equal(t, models.RoomStatusActive, snap.State.Room.Status)
	assert.Equal(t, uint64(7), snap.State.Version)
	require.Len(t, snap.State.History, 1)
	assert.Equal(t, 2, snap.Derived.CurrentPickNumber, "derived picks up where the snapshot left off")

	// The caller's copy was cloned on the way in.
	state.History = nil
	assert.Len(t, st.Snapshot().State.History, 1)

	_, err = reg.Restore(state)
	assert.Error(t, err, "restoring over a registered room is rejected")
}
