package gateway

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/mcdev12/bestball/go/internal/models"
)

// DeadlineSource reports the armed countdown for a room. Satisfied by the
// orchestrator.
type DeadlineSource interface {
	Deadline(roomID uuid.UUID) (pickNumber int, deadline time.Time, ok bool)
}

// RoomStateResponse is the full resync payload sent to a client on connect
// or reconnect. The server state is authoritative; nothing the client
// believed before reconnecting is trusted.
type RoomStateResponse struct {
	Room        models.Room      `json:"room"`
	History     []models.Pick    `json:"history"`
	Derived     room.Derived     `json:"derived"`
	CurrentPick *CurrentPickInfo `json:"current_pick,omitempty"`
	NeedsReview bool             `json:"needs_review,omitempty"`
	ServerTime  time.Time        `json:"server_time"`
}

// CurrentPickInfo describes the pick on the clock, including the server
// deadline. Client countdowns are cosmetic; the server deadline is
// authoritative for autopick.
type CurrentPickInfo struct {
	PickNumber       int       `json:"pick_number"`
	Round            int       `json:"round"`
	ParticipantID    uuid.UUID `json:"participant_id"`
	TimeoutAt        time.Time `json:"timeout_at,omitempty"`
	TimeRemainingSec int       `json:"time_remaining_sec"`
}

// PickHistoryResponse is a paginated slice of committed picks.
type PickHistoryResponse struct {
	Picks      []models.Pick `json:"picks"`
	NextCursor *int          `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

// StateProvider builds client-facing views from a room store snapshot.
type StateProvider struct {
	deadlines DeadlineSource
}

// NewStateProvider creates a StateProvider. deadlines may be nil, in which
// case current-pick responses omit timeout information.
func NewStateProvider(deadlines DeadlineSource) *StateProvider {
	return &StateProvider{deadlines: deadlines}
}

// RoomState assembles the full resync view for one room.
func (p *StateProvider) RoomState(st *room.Store) RoomStateResponse {
	snap := st.Snapshot()
	resp := RoomStateResponse{
		Room:        snap.State.Room,
		History:     snap.State.History,
		Derived:     snap.Derived,
		NeedsReview: snap.State.NeedsReview,
		ServerTime:  time.Now(),
	}

	if snap.State.Room.Status == models.RoomStatusActive && !snap.Derived.IsComplete {
		info := &CurrentPickInfo{
			PickNumber:    snap.Derived.CurrentPickNumber,
			Round:         snap.Derived.CurrentRound,
			ParticipantID: snap.Derived.CurrentPicker.ID,
		}
		if p.deadlines != nil {
			if pickNumber, deadline, ok := p.deadlines.Deadline(snap.State.Room.ID); ok && pickNumber == info.PickNumber {
				info.TimeoutAt = deadline
				if remaining := int(time.Until(deadline).Seconds()); remaining > 0 {
					info.TimeRemainingSec = remaining
				}
			}
		}
		resp.CurrentPick = info
	}
	return resp
}

// PickHistory returns a page of history starting after cursor (a pick
// number; 0 means from the beginning).
func (p *StateProvider) PickHistory(st *room.Store, cursor, limit int) PickHistoryResponse {
	if limit <= 0 {
		limit = 50
	} else if limit > 200 {
		limit = 200
	}
	snap := st.Snapshot()
	history := snap.State.History

	start := cursor
	if start > len(history) {
		start = len(history)
	}
	end := start + limit
	if end > len(history) {
		end = len(history)
	}

	resp := PickHistoryResponse{
		Picks:   history[start:end],
		HasMore: end < len(history),
	}
	if resp.HasMore {
		next := end
		resp.NextCursor = &next
	}
	return resp
}
