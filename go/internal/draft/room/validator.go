package room

import (
	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/models"
)

// ProposedPick carries everything needed to validate and commit a pick.
type ProposedPick struct {
	PickNumber int
	PlayerID   uuid.UUID
	PlayerName string
	Position   models.Position
	PickedBy   uuid.UUID
	IsAuto     bool

	// AllowGap skips the current-pick-number check. Administrative
	// correction path only.
	AllowGap bool
}

// ValidatePick checks a proposed pick against current state. Returns nil if
// accepted, or the first rejection in check order.
func ValidatePick(s *State, p ProposedPick) *ValidationError {
	if s.Room.Status != models.RoomStatusActive {
		return rejectf(CodeRoomNotActive, "room %s is %s", s.Room.ID, s.Room.Status)
	}

	d := ComputeDerived(s)
	if !p.AllowGap && p.PickNumber != d.CurrentPickNumber {
		return rejectf(CodePickNumberMismatch,
			"pick %d submitted but current pick is %d", p.PickNumber, d.CurrentPickNumber)
	}

	// Autopick acts on behalf of whoever is on the clock, regardless of
	// which process triggered it.
	if !p.IsAuto && !d.IsOnTheClock(p.PickedBy) {
		return rejectf(CodeNotOnTheClock,
			"participant %s is not on the clock (current picker %s)", p.PickedBy, d.CurrentPicker.ID)
	}

	drafted := s.DraftedPlayers()
	if _, taken := drafted[p.PlayerID]; taken {
		return rejectf(CodePlayerAlreadyDrafted, "player %s already drafted", p.PlayerID)
	}

	if s.Room.Settings.EnforceRosterLimits && s.Room.Settings.RosterLimits != nil {
		picker := p.PickedBy
		if p.IsAuto {
			picker = d.CurrentPicker.ID
		}
		counts := s.RosterCounts(picker)
		if lim, ok := s.Room.Settings.RosterLimits[p.Position]; ok && lim.Max > 0 && counts[p.Position] >= lim.Max {
			return rejectf(CodeRosterLimitExceeded,
				"participant %s already holds %d %s (max %d)", picker, counts[p.Position], p.Position, lim.Max)
		}
	}

	return nil
}

// AuditState sweeps the full state for invariant violations. Used as the
// post-transform check inside Store.UpdateState; also exposed for
// administrative tooling.
func AuditState(s *State) []*ValidationError {
	var violations []*ValidationError

	// Pick numbers must be exactly {1..len(history)} in commit order.
	for i, p := range s.History {
		if p.PickNumber != i+1 {
			violations = append(violations, rejectf(CodePickNumberMismatch,
				"history index %d holds pick number %d", i, p.PickNumber))
		}
	}

	// No player may appear twice across history.
	seen := make(map[uuid.UUID]int, len(s.History))
	for _, p := range s.History {
		if prev, dup := seen[p.PlayerID]; dup {
			violations = append(violations, rejectf(CodePlayerAlreadyDrafted,
				"player %s drafted at picks %d and %d", p.PlayerID, prev, p.PickNumber))
			continue
		}
		seen[p.PlayerID] = p.PickNumber
	}

	// Every committed pick must match the snake order for its slot.
	n := len(s.Room.Participants)
	if n > 0 {
		for _, p := range s.History {
			round := ((p.PickNumber - 1) / n) + 1
			order := OrderForRound(s.Room.Participants, round, s.Room.Settings.SnakeEnabled)
			expected := order[(p.PickNumber-1)%n]
			if p.PickedBy != expected.ID {
				violations = append(violations, rejectf(CodeDraftOrderInconsistent,
					"pick %d made by %s, expected %s", p.PickNumber, p.PickedBy, expected.ID))
			}
		}
	}

	// Queues must never reference drafted players.
	drafted := s.DraftedPlayers()
	for pid, q := range s.Queues {
		for _, entry := range q {
			if _, taken := drafted[entry.PlayerID]; taken {
				violations = append(violations, rejectf(CodeQueueContainsDrafted,
					"queue for %s contains drafted player %s", pid, entry.PlayerID))
			}
		}
	}

	return violations
}
