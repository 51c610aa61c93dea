package room

import (
	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/models"
)

// Domain operations. Each one is an UpdateState call; none of them touch
// canonical state directly.

// Start transitions the room from waiting to active. The orchestrator arms
// the first pick timer off the resulting snapshot.
func (st *Store) Start() (Snapshot, error) {
	now := st.clock.Now()
	return st.UpdateState(func(s *State) ([]events.Envelope, error) {
		if s.Room.Status != models.RoomStatusWaiting {
			return nil, rejectf(CodeRoomNotActive, "room %s cannot start from %s", s.Room.ID, s.Room.Status)
		}
		if len(s.Room.Participants) == 0 {
			return nil, rejectf(CodeRoomNotActive, "room %s has no participants", s.Room.ID)
		}
		s.Room.Status = models.RoomStatusActive
		s.Room.StartedAt = &now

		env, err := events.NewEnvelope(s.Room.ID, events.TypeRoomStarted, now, events.RoomStartedPayload{
			RoomID:       s.Room.ID,
			StartedAt:    now,
			TotalRounds:  s.Room.Settings.TotalRounds,
			TotalPicks:   s.Room.TotalPicks(),
			Participants: len(s.Room.Participants),
		})
		if err != nil {
			return nil, err
		}
		return []events.Envelope{env}, nil
	}, DefaultUpdateOptions())
}

// SubmitPick validates and commits a pick, human or auto. On success every
// queue is filtered of the newly drafted player and, if that was the final
// pick, the room completes.
func (st *Store) SubmitPick(p ProposedPick) (models.Pick, Snapshot, error) {
	now := st.clock.Now()
	var committed models.Pick

	snap, err := st.UpdateState(func(s *State) ([]events.Envelope, error) {
		if verr := ValidatePick(s, p); verr != nil {
			return nil, verr
		}

		d := ComputeDerived(s)
		pickedBy := p.PickedBy
		if p.IsAuto {
			pickedBy = d.CurrentPicker.ID
		}
		n := len(s.Room.Participants)

		committed = models.Pick{
			ID:         uuid.New(),
			RoomID:     s.Room.ID,
			PickNumber: p.PickNumber,
			Round:      ((p.PickNumber - 1) / n) + 1,
			PlayerID:   p.PlayerID,
			PlayerName: p.PlayerName,
			Position:   p.Position,
			PickedBy:   pickedBy,
			IsAuto:     p.IsAuto,
			PickedAt:   now,
		}
		s.History = append(s.History, committed)
		s.filterQueues(p.PlayerID)

		madeEnv, err := events.NewEnvelope(s.Room.ID, events.TypePickMade, now, events.PickMadePayload{
			PickID:        committed.ID,
			PickNumber:    committed.PickNumber,
			Round:         committed.Round,
			ParticipantID: committed.PickedBy,
			PlayerID:      committed.PlayerID,
			PlayerName:    committed.PlayerName,
			Position:      string(committed.Position),
			IsAuto:        committed.IsAuto,
			MadeAt:        now,
		})
		if err != nil {
			return nil, err
		}
		evs := []events.Envelope{madeEnv}

		if len(s.History) == s.Room.TotalPicks() {
			s.Room.Status = models.RoomStatusCompleted
			s.Room.CompletedAt = &now
			doneEnv, err := events.NewEnvelope(s.Room.ID, events.TypeRoomCompleted, now, events.RoomCompletedPayload{
				RoomID:      s.Room.ID,
				CompletedAt: now,
				TotalPicks:  len(s.History),
			})
			if err != nil {
				return nil, err
			}
			evs = append(evs, doneEnv)
		}
		return evs, nil
	}, DefaultUpdateOptions())
	if err != nil {
		return models.Pick{}, Snapshot{}, err
	}
	return committed, snap, nil
}

// MarkNeedsReview flags the room for administrative attention. Set by
// autopick when it had to ignore roster limits.
func (st *Store) MarkNeedsReview() (Snapshot, error) {
	return st.UpdateState(func(s *State) ([]events.Envelope, error) {
		s.NeedsReview = true
		return nil, nil
	}, DefaultUpdateOptions())
}

// SetQueue replaces a participant's fallback queue. Entries referencing
// already-drafted players are rejected outright.
func (st *Store) SetQueue(participantID uuid.UUID, entries []models.QueuedPlayer) (Snapshot, error) {
	now := st.clock.Now()
	return st.UpdateState(func(s *State) ([]events.Envelope, error) {
		drafted := s.DraftedPlayers()
		for _, entry := range entries {
			if _, taken := drafted[entry.PlayerID]; taken {
				return nil, rejectf(CodeQueueContainsDrafted,
					"player %s is already drafted", entry.PlayerID)
			}
		}
		s.Queues[participantID] = append([]models.QueuedPlayer(nil), entries...)

		env, err := events.NewEnvelope(s.Room.ID, events.TypeQueueUpdated, now, events.QueueUpdatedPayload{
			ParticipantID: participantID,
			QueueSize:     len(entries),
			UpdatedAt:     now,
		})
		if err != nil {
			return nil, err
		}
		return []events.Envelope{env}, nil
	}, DefaultUpdateOptions())
}

// Pause suspends an active room. The orchestrator cancels the armed timer
// off the resulting snapshot.
func (st *Store) Pause(reason string) (Snapshot, error) {
	now := st.clock.Now()
	return st.UpdateState(func(s *State) ([]events.Envelope, error) {
		if s.Room.Status != models.RoomStatusActive {
			return nil, rejectf(CodeRoomNotActive, "room %s cannot pause from %s", s.Room.ID, s.Room.Status)
		}
		s.Room.Status = models.RoomStatusPaused

		env, err := events.NewEnvelope(s.Room.ID, events.TypeRoomPaused, now, events.RoomPausedPayload{
			RoomID:   s.Room.ID,
			PausedAt: now,
			Reason:   reason,
		})
		if err != nil {
			return nil, err
		}
		return []events.Envelope{env}, nil
	}, DefaultUpdateOptions())
}

// Resume reactivates a paused room with a full fresh countdown for the
// current pick.
func (st *Store) Resume() (Snapshot, error) {
	now := st.clock.Now()
	return st.UpdateState(func(s *State) ([]events.Envelope, error) {
		if s.Room.Status != models.RoomStatusPaused {
			return nil, rejectf(CodeRoomNotActive, "room %s cannot resume from %s", s.Room.ID, s.Room.Status)
		}
		s.Room.Status = models.RoomStatusActive

		env, err := events.NewEnvelope(s.Room.ID, events.TypeRoomResumed, now, events.RoomResumedPayload{
			RoomID:    s.Room.ID,
			ResumedAt: now,
		})
		if err != nil {
			return nil, err
		}
		return []events.Envelope{env}, nil
	}, DefaultUpdateOptions())
}

// ClearPicks is the administrative reset: it wipes history and the review
// flag and returns a completed room to active so the draft can be redone.
func (st *Store) ClearPicks() (Snapshot, error) {
	return st.UpdateState(func(s *State) ([]events.Envelope, error) {
		s.History = nil
		s.NeedsReview = false
		s.Room.CompletedAt = nil
		if s.Room.Status == models.RoomStatusCompleted {
			s.Room.Status = models.RoomStatusActive
		}
		return nil, nil
	}, DefaultUpdateOptions())
}

// UpdateSettings replaces the room settings. Locked once drafting starts
// unless adminOverride is set.
func (st *Store) UpdateSettings(settings models.DraftSettings, adminOverride bool) (Snapshot, error) {
	return st.UpdateState(func(s *State) ([]events.Envelope, error) {
		if s.Room.Status != models.RoomStatusWaiting && !adminOverride {
			return nil, rejectf(CodeSettingsLocked,
				"settings are locked once room %s leaves WAITING", s.Room.ID)
		}
		s.Room.Settings = settings
		return nil, nil
	}, DefaultUpdateOptions())
}
