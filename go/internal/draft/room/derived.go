package room

import (
	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/models"
)

// Derived holds the read-only projections computed from canonical state.
// It is recomputed on demand and never stored.
type Derived struct {
	CurrentPickNumber int                `json:"current_pick_number"`
	CurrentRound      int                `json:"current_round"`
	IsSnakeRound      bool               `json:"is_snake_round"`
	CurrentPicker     models.Participant `json:"current_picker"`
	IsComplete        bool               `json:"is_complete"`
	TotalPicks        int                `json:"total_picks"`
}

// ComputeDerived calculates the derived projections for a state. Cheap
// enough to call on every read; no caching.
func ComputeDerived(s *State) Derived {
	n := len(s.Room.Participants)
	d := Derived{
		CurrentPickNumber: len(s.History) + 1,
		TotalPicks:        s.Room.TotalPicks(),
	}
	if n == 0 {
		return d
	}

	d.CurrentRound = ((d.CurrentPickNumber - 1) / n) + 1
	d.IsSnakeRound = s.Room.Settings.SnakeEnabled && d.CurrentRound%2 == 0
	d.IsComplete = len(s.History) == d.TotalPicks

	if !d.IsComplete {
		order := OrderForRound(s.Room.Participants, d.CurrentRound, s.Room.Settings.SnakeEnabled)
		d.CurrentPicker = order[(d.CurrentPickNumber-1)%n]
	}
	return d
}

// IsOnTheClock reports whether the participant is authorized to submit the
// next pick.
func (d Derived) IsOnTheClock(participantID uuid.UUID) bool {
	return !d.IsComplete && d.CurrentPicker.ID == participantID
}
