package room

import (
	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/models"
)

// State is the canonical in-memory state of one draft room. It is owned
// exclusively by the room's Store; everything outside the Store only ever
// sees clones.
type State struct {
	Room    models.Room                         `json:"room"`
	History []models.Pick                       `json:"history"`
	Queues  map[uuid.UUID][]models.QueuedPlayer `json:"queues"`

	// NeedsReview is set when autopick had to ignore roster limits because
	// no conforming player was available. Surfaced to admins, never cleared
	// automatically.
	NeedsReview bool `json:"needs_review,omitempty"`

	// Version increments on every committed mutation.
	Version uint64 `json:"version"`
}

// NewState builds the initial state for a freshly created room.
func NewState(rm models.Room) *State {
	return &State{
		Room:   rm,
		Queues: make(map[uuid.UUID][]models.QueuedPlayer),
	}
}

// Clone returns a deep copy of the state. Updaters mutate the clone; the
// original is never touched until commit.
func (s *State) Clone() *State {
	c := &State{
		Room:        s.Room,
		NeedsReview: s.NeedsReview,
		Version:     s.Version,
	}

	c.Room.Participants = append([]models.Participant(nil), s.Room.Participants...)
	if s.Room.Settings.RosterLimits != nil {
		limits := make(models.RosterLimits, len(s.Room.Settings.RosterLimits))
		for pos, lim := range s.Room.Settings.RosterLimits {
			limits[pos] = lim
		}
		c.Room.Settings.RosterLimits = limits
	}
	if s.Room.StartedAt != nil {
		t := *s.Room.StartedAt
		c.Room.StartedAt = &t
	}
	if s.Room.CompletedAt != nil {
		t := *s.Room.CompletedAt
		c.Room.CompletedAt = &t
	}

	c.History = append([]models.Pick(nil), s.History...)

	c.Queues = make(map[uuid.UUID][]models.QueuedPlayer, len(s.Queues))
	for pid, q := range s.Queues {
		c.Queues[pid] = append([]models.QueuedPlayer(nil), q...)
	}
	return c
}

// DraftedPlayers returns the set of player ids already committed in history.
func (s *State) DraftedPlayers() map[uuid.UUID]struct{} {
	drafted := make(map[uuid.UUID]struct{}, len(s.History))
	for _, p := range s.History {
		drafted[p.PlayerID] = struct{}{}
	}
	return drafted
}

// RosterCounts returns how many players of each position a participant has
// drafted so far.
func (s *State) RosterCounts(participantID uuid.UUID) map[models.Position]int {
	counts := make(map[models.Position]int)
	for _, p := range s.History {
		if p.PickedBy == participantID {
			counts[p.Position]++
		}
	}
	return counts
}

// Queue returns the participant's current fallback queue.
func (s *State) Queue(participantID uuid.UUID) []models.QueuedPlayer {
	return s.Queues[participantID]
}

// filterQueues removes the given player from every participant's queue.
// Called at every commit boundary so queues never reference drafted players.
func (s *State) filterQueues(playerID uuid.UUID) {
	for pid, q := range s.Queues {
		filtered := q[:0]
		for _, entry := range q {
			if entry.PlayerID != playerID {
				filtered = append(filtered, entry)
			}
		}
		s.Queues[pid] = filtered
	}
}
