package room

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSink records every published envelope.
type captureSink struct {
	mu   sync.Mutex
	envs []events.Envelope
}

func (c *captureSink) Publish(env events.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.envs = append(c.envs, env)
}

func (c *captureSink) types() []events.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Type, len(c.envs))
	for i, env := range c.envs {
		out[i] = env.Type
	}
	return out
}

func newTestStore(t *testing.T, participants []models.Participant, rounds int) (*Store, *captureSink) {
	t.Helper()
	sink := &captureSink{}
	st := NewStore(testRoom(participants, rounds), clockwork.NewFakeClock(), sink)
	return st, sink
}

func startedStore(t *testing.T, participants []models.Participant, rounds int) (*Store, *captureSink) {
	t.Helper()
	st, sink := newTestStore(t, participants, rounds)
	_, err := st.Start()
	require.NoError(t, err)
	return st, sink
}

func TestStartTransitionsWaitingToActive(t *testing.T) {
	participants := testParticipants(3)
	st, sink := newTestStore(t, participants, 2)

	snap, err := st.Start()
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusActive, snap.State.Room.Status)
	assert.NotNil(t, snap.State.Room.StartedAt)
	assert.Equal(t, uint64(1), snap.State.Version)
	assert.Equal(t, []events.Type{events.TypeRoomStarted}, sink.types())

	// Starting twice is rejected and changes nothing.
	_, err = st.Start()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeRoomNotActive, verr.Code)
	assert.Equal(t, uint64(1), st.Snapshot().State.Version)
}

func TestStartRequiresParticipants(t *testing.T) {
	st, _ := newTestStore(t, nil, 2)
	_, err := st.Start()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeRoomNotActive, verr.Code)
}

func TestSubmitPickCommits(t *testing.T) {
	participants := testParticipants(3)
	st, sink := startedStore(t, participants, 2)

	playerID := uuid.New()
	pick, snap, err := st.SubmitPick(ProposedPick{
		PickNumber: 1,
		PlayerID:   playerID,
		PlayerName: "Justin Jefferson",
		Position:   models.PositionWR,
		PickedBy:   participants[0].ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, pick.PickNumber)
	assert.Equal(t, 1, pick.Round)
	assert.Equal(t, playerID, pick.PlayerID)
	assert.Equal(t, participants[0].ID, pick.PickedBy)
	assert.False(t, pick.IsAuto)

	require.Len(t, snap.State.History, 1)
	assert.Equal(t, uint64(2), snap.State.Version)
	assert.Equal(t, 2, snap.Derived.CurrentPickNumber)
	assert.Equal(t, participants[1].ID, snap.Derived.CurrentPicker.ID)
	assert.Equal(t, []events.Type{events.TypeRoomStarted, events.TypePickMade}, sink.types())
}

func TestSubmitPickRejectionLeavesStateUntouched(t *testing.T) {
	participants := testParticipants(3)
	st, _ := startedStore(t, participants, 2)

	before := st.Snapshot()
	_, _, err := st.SubmitPick(ProposedPick{
		PickNumber: 5,
		PlayerID:   uuid.New(),
		Position:   models.PositionRB,
		PickedBy:   participants[0].ID,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodePickNumberMismatch, verr.Code)

	after := st.Snapshot()
	assert.Equal(t, before.State.Version, after.State.Version)
	assert.Empty(t, after.State.History)
}

func TestSubmitPickAutoResolvesPicker(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 2)

	pick, _, err := st.SubmitPick(ProposedPick{
		PickNumber: 1,
		PlayerID:   uuid.New(),
		PlayerName: "Bijan Robinson",
		Position:   models.PositionRB,
		IsAuto:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, participants[0].ID, pick.PickedBy)
	assert.True(t, pick.IsAuto)
}

func TestFullDraftCompletes(t *testing.T) {
	participants := testParticipants(2)
	st, sink := startedStore(t, participants, 2)

	var last Snapshot
	for pickNum := 1; pickNum <= 4; pickNum++ {
		snap := st.Snapshot()
		var err error
		_, last, err = st.SubmitPick(ProposedPick{
			PickNumber: pickNum,
			PlayerID:   uuid.New(),
			PlayerName: fmt.Sprintf("Player %d", pickNum),
			Position:   models.PositionWR,
			PickedBy:   snap.Derived.CurrentPicker.ID,
		})
		require.NoError(t, err, "pick %d", pickNum)
	}

	assert.Equal(t, models.RoomStatusCompleted, last.State.Room.Status)
	assert.NotNil(t, last.State.Room.CompletedAt)
	assert.True(t, last.Derived.IsComplete)

	types := sink.types()
	assert.Equal(t, events.TypeRoomCompleted, types[len(types)-1])

	// A completed room accepts no further picks.
	_, _, err := st.SubmitPick(ProposedPick{
		PickNumber: 5,
		PlayerID:   uuid.New(),
		Position:   models.PositionTE,
		PickedBy:   participants[0].ID,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeRoomNotActive, verr.Code)
}

func TestConcurrentPicksExactlyOneWins(t *testing.T) {
	participants := testParticipants(4)
	st, _ := startedStore(t, participants, 2)

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = st.SubmitPick(ProposedPick{
				PickNumber: 1,
				PlayerID:   uuid.New(),
				PlayerName: fmt.Sprintf("Racer %d", i),
				Position:   models.PositionRB,
				PickedBy:   participants[0].ID,
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, CodePickNumberMismatch, verr.Code)
	}
	assert.Equal(t, 1, wins)

	snap := st.Snapshot()
	require.Len(t, snap.State.History, 1)
	assert.Equal(t, 2, snap.Derived.CurrentPickNumber)
}

func TestSetQueueAndFiltering(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 2)

	target := uuid.New()
	keeper := uuid.New()
	_, err := st.SetQueue(participants[1].ID, []models.QueuedPlayer{
		{PlayerID: target, PlayerName: "Target", Position: models.PositionWR},
		{PlayerID: keeper, PlayerName: "Keeper", Position: models.PositionTE},
	})
	require.NoError(t, err)

	// Drafting the queued player removes it from every queue atomically.
	_, snap, err := st.SubmitPick(ProposedPick{
		PickNumber: 1,
		PlayerID:   target,
		PlayerName: "Target",
		Position:   models.PositionWR,
		PickedBy:   participants[0].ID,
	})
	require.NoError(t, err)

	queue := snap.State.Queue(participants[1].ID)
	require.Len(t, queue, 1)
	assert.Equal(t, keeper, queue[0].PlayerID)
}

func TestSetQueueRejectsDraftedPlayer(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 2)

	drafted := uuid.New()
	_, _, err := st.SubmitPick(ProposedPick{
		PickNumber: 1,
		PlayerID:   drafted,
		Position:   models.PositionQB,
		PickedBy:   participants[0].ID,
	})
	require.NoError(t, err)

	_, err = st.SetQueue(participants[1].ID, []models.QueuedPlayer{
		{PlayerID: drafted, Position: models.PositionQB},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeQueueContainsDrafted, verr.Code)
}

func TestUpdateStateLenientAuditCommits(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 2)

	// Force a contiguity violation through the raw update path.
	snap, err := st.UpdateState(func(s *State) ([]events.Envelope, error) {
		s.History = append(s.History, models.Pick{
			PickNumber: 3,
			PlayerID:   uuid.New(),
			PickedBy:   participants[0].ID,
		})
		return nil, nil
	}, DefaultUpdateOptions())

	require.NoError(t, err, "lenient mode logs violations but commits")
	assert.Len(t, snap.State.History, 1)
}

func TestUpdateStateStrictAuditRejects(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 2)

	before := st.Snapshot()
	_, err := st.UpdateState(func(s *State) ([]events.Envelope, error) {
		s.History = append(s.History, models.Pick{
			PickNumber: 3,
			PlayerID:   uuid.New(),
			PickedBy:   participants[0].ID,
		})
		return nil, nil
	}, UpdateOptions{Validate: true, StrictValidation: true})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodePickNumberMismatch, verr.Code)
	assert.Equal(t, before.State.Version, st.Snapshot().State.Version)
}

func TestUpdateStateUpdaterErrorDiscardsClone(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 2)

	boom := errors.New("boom")
	_, err := st.UpdateState(func(s *State) ([]events.Envelope, error) {
		s.Room.Status = models.RoomStatusCompleted
		s.History = append(s.History, models.Pick{PickNumber: 1})
		return nil, boom
	}, DefaultUpdateOptions())
	require.ErrorIs(t, err, boom)

	snap := st.Snapshot()
	assert.Equal(t, models.RoomStatusActive, snap.State.Room.Status)
	assert.Empty(t, snap.State.History)
}

func TestSubscribeReceivesCommits(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 2)

	ch, cancel := st.Subscribe(4)
	defer cancel()

	_, _, err := st.SubmitPick(ProposedPick{
		PickNumber: 1,
		PlayerID:   uuid.New(),
		Position:   models.PositionRB,
		PickedBy:   participants[0].ID,
	})
	require.NoError(t, err)

	select {
	case snap := <-ch:
		assert.Len(t, snap.State.History, 1)
		require.Len(t, snap.Events, 1)
		assert.Equal(t, events.TypePickMade, snap.Events[0].Type)
	default:
		t.Fatal("expected a snapshot on the subscription channel")
	}
}

func TestSkipNotifySuppressesSubscribers(t *testing.T) {
	participants := testParticipants(2)
	st, sink := startedStore(t, participants, 2)

	ch, cancel := st.Subscribe(4)
	defer cancel()
	published := len(sink.types())

	_, err := st.UpdateState(func(s *State) ([]events.Envelope, error) {
		s.NeedsReview = true
		return nil, nil
	}, UpdateOptions{Validate: true, SkipNotify: true})
	require.NoError(t, err)

	select {
	case <-ch:
		t.Fatal("SkipNotify must not push snapshots")
	default:
	}
	assert.Len(t, sink.types(), published)
	assert.True(t, st.Snapshot().State.NeedsReview, "the mutation itself still commits")
}

func TestSnapshotIsolation(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 2)

	snap := st.Snapshot()
	snap.State.Room.Status = models.RoomStatusCompleted
	snap.State.History = append(snap.State.History, models.Pick{PickNumber: 99})
	snap.State.Queues[participants[0].ID] = []models.QueuedPlayer{{PlayerID: uuid.New()}}

	fresh := st.Snapshot()
	assert.Equal(t, models.RoomStatusActive, fresh.State.Room.Status)
	assert.Empty(t, fresh.State.History)
	assert.Empty(t, fresh.State.Queue(participants[0].ID))
}

func TestPauseAndResume(t *testing.T) {
	participants := testParticipants(2)
	st, sink := startedStore(t, participants, 2)

	snap, err := st.Pause("commissioner request")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusPaused, snap.State.Room.Status)

	// Paused rooms reject picks.
	_, _, err = st.SubmitPick(ProposedPick{
		PickNumber: 1,
		PlayerID:   uuid.New(),
		Position:   models.PositionRB,
		PickedBy:   participants[0].ID,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeRoomNotActive, verr.Code)

	snap, err = st.Resume()
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusActive, snap.State.Room.Status)

	types := sink.types()
	assert.Contains(t, types, events.TypeRoomPaused)
	assert.Contains(t, types, events.TypeRoomResumed)

	// Resume from active is invalid.
	_, err = st.Resume()
	require.ErrorAs(t, err, &verr)
}

func TestClearPicksResetsCompletedRoom(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 1)

	for pickNum := 1; pickNum <= 2; pickNum++ {
		snap := st.Snapshot()
		_, _, err := st.SubmitPick(ProposedPick{
			PickNumber: pickNum,
			PlayerID:   uuid.New(),
			Position:   models.PositionWR,
			PickedBy:   snap.Derived.CurrentPicker.ID,
		})
		require.NoError(t, err)
	}
	require.Equal(t, models.RoomStatusCompleted, st.Snapshot().State.Room.Status)

	snap, err := st.ClearPicks()
	require.NoError(t, err)
	assert.Empty(t, snap.State.History)
	assert.False(t, snap.State.NeedsReview)
	assert.Nil(t, snap.State.Room.CompletedAt)
	assert.Equal(t, models.RoomStatusActive, snap.State.Room.Status)
	assert.Equal(t, 1, snap.Derived.CurrentPickNumber)
}

func TestUpdateSettingsLockedAfterStart(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 2)

	newSettings := models.DraftSettings{PickTimerSec: 60, TotalRounds: 3, SnakeEnabled: true}
	_, err := st.UpdateSettings(newSettings, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeSettingsLocked, verr.Code)

	snap, err := st.UpdateSettings(newSettings, true)
	require.NoError(t, err)
	assert.Equal(t, 60, snap.State.Room.Settings.PickTimerSec)
}

func TestMarkNeedsReview(t *testing.T) {
	participants := testParticipants(2)
	st, _ := startedStore(t, participants, 2)

	snap, err := st.MarkNeedsReview()
	require.NoError(t, err)
	assert.True(t, snap.State.NeedsReview)
}
