package orchestrator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/mcdev12/bestball/go/internal/playerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedPlayer(name string, pos models.Position, adp float64) models.Player {
	return models.Player{
		ID:       uuid.New(),
		FullName: name,
		Position: pos,
		ADP:      adp,
	}
}

// strategySnapshot builds a snapshot with the given committed picks and
// queue for one participant.
func strategySnapshot(participantID uuid.UUID, picked []models.Player, queue []models.Player, limits models.RosterLimits) room.Snapshot {
	s := &room.State{
		Room: models.Room{
			ID:     uuid.New(),
			Status: models.RoomStatusActive,
			Settings: models.DraftSettings{
				TotalRounds:  10,
				RosterLimits: limits,
			},
			Participants: []models.Participant{{ID: participantID}},
		},
		Queues: make(map[uuid.UUID][]models.QueuedPlayer),
	}
	for i, p := range picked {
		s.History = append(s.History, models.Pick{
			PickNumber: i + 1,
			PlayerID:   p.ID,
			PlayerName: p.FullName,
			Position:   p.Position,
			PickedBy:   participantID,
		})
	}
	for _, p := range queue {
		s.Queues[participantID] = append(s.Queues[participantID], models.QueuedPlayer{
			PlayerID:   p.ID,
			PlayerName: p.FullName,
			Position:   p.Position,
		})
	}
	return room.Snapshot{State: s, Derived: room.ComputeDerived(s)}
}

func TestQueueFirstStrategy(t *testing.T) {
	participantID := uuid.New()

	eliteRB := namedPlayer("Elite RB", models.PositionRB, 1.2)
	goodWR := namedPlayer("Good WR", models.PositionWR, 5.8)
	lateQB := namedPlayer("Late QB", models.PositionQB, 90.1)
	lateTE := namedPlayer("Late TE", models.PositionTE, 120.4)

	t.Run("queue entry wins over better ADP", func(t *testing.T) {
		pool := playerpool.New([]models.Player{eliteRB, goodWR, lateQB, lateTE})
		strat := NewQueueFirstStrategy(pool)

		snap := strategySnapshot(participantID, nil, []models.Player{lateTE, eliteRB}, nil)
		choice, review, err := strat.Select(snap, participantID)
		require.NoError(t, err)
		assert.Equal(t, lateTE.ID, choice.ID)
		assert.False(t, review)
	})

	t.Run("drafted queue entries are skipped", func(t *testing.T) {
		pool := playerpool.New([]models.Player{eliteRB, goodWR, lateQB, lateTE})
		strat := NewQueueFirstStrategy(pool)

		// Stale snapshot: the first queued player is already in history.
		snap := strategySnapshot(participantID, []models.Player{lateTE}, []models.Player{lateTE, lateQB}, nil)
		choice, review, err := strat.Select(snap, participantID)
		require.NoError(t, err)
		assert.Equal(t, lateQB.ID, choice.ID)
		assert.False(t, review)
	})

	t.Run("empty queue falls back to best ADP", func(t *testing.T) {
		pool := playerpool.New([]models.Player{eliteRB, goodWR, lateQB, lateTE})
		strat := NewQueueFirstStrategy(pool)

		snap := strategySnapshot(participantID, nil, nil, nil)
		choice, review, err := strat.Select(snap, participantID)
		require.NoError(t, err)
		assert.Equal(t, eliteRB.ID, choice.ID)
		assert.False(t, review)
	})

	t.Run("roster limits steer the fallback", func(t *testing.T) {
		rb2 := namedPlayer("Second RB", models.PositionRB, 2.0)
		pool := playerpool.New([]models.Player{eliteRB, rb2, goodWR, lateQB})
		strat := NewQueueFirstStrategy(pool)

		limits := models.RosterLimits{models.PositionRB: {Max: 1}}
		snap := strategySnapshot(participantID, []models.Player{eliteRB}, nil, limits)
		choice, review, err := strat.Select(snap, participantID)
		require.NoError(t, err)
		assert.Equal(t, goodWR.ID, choice.ID, "the second RB is blocked by the limit")
		assert.False(t, review)
	})

	t.Run("no conforming player drafts best available and flags review", func(t *testing.T) {
		rb2 := namedPlayer("Second RB", models.PositionRB, 2.0)
		pool := playerpool.New([]models.Player{eliteRB, rb2})
		strat := NewQueueFirstStrategy(pool)

		limits := models.RosterLimits{models.PositionRB: {Max: 1}}
		snap := strategySnapshot(participantID, []models.Player{eliteRB}, nil, limits)
		choice, review, err := strat.Select(snap, participantID)
		require.NoError(t, err)
		assert.Equal(t, rb2.ID, choice.ID)
		assert.True(t, review)
	})

	t.Run("exhausted pool errors", func(t *testing.T) {
		pool := playerpool.New([]models.Player{eliteRB})
		strat := NewQueueFirstStrategy(pool)

		snap := strategySnapshot(participantID, []models.Player{eliteRB}, nil, nil)
		_, _, err := strat.Select(snap, participantID)
		assert.Error(t, err)
	})
}

func TestRandomStrategySkipsDrafted(t *testing.T) {
	participantID := uuid.New()
	a := namedPlayer("A", models.PositionWR, 1)
	b := namedPlayer("B", models.PositionWR, 2)
	pool := playerpool.New([]models.Player{a, b})
	strat := NewRandomStrategy(pool)

	snap := strategySnapshot(participantID, []models.Player{a}, nil, nil)
	for i := 0; i < 10; i++ {
		choice, review, err := strat.Select(snap, participantID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, choice.ID)
		assert.False(t, review)
	}
}
