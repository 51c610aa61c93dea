package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus defines the lifecycle status of a draft room.
type RoomStatus string

const (
	RoomStatusWaiting   RoomStatus = "WAITING"
	RoomStatusActive    RoomStatus = "ACTIVE"
	RoomStatusPaused    RoomStatus = "PAUSED"
	RoomStatusCompleted RoomStatus = "COMPLETED"
)

// PositionLimit bounds how many players of one position a roster may hold.
type PositionLimit struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// RosterLimits maps a position code to its per-roster bounds.
type RosterLimits map[Position]PositionLimit

// DraftSettings holds the configuration for a draft room. Settings are
// immutable once the room goes active, except through the admin override path.
type DraftSettings struct {
	PickTimerSec        int          `json:"pick_timer_sec"`
	TotalRounds         int          `json:"total_rounds"`
	SnakeEnabled        bool         `json:"snake_enabled"`
	RosterLimits        RosterLimits `json:"roster_limits,omitempty"`
	EnforceRosterLimits bool         `json:"enforce_roster_limits,omitempty"`
}

// Participant identifies one drafter in a room. The participant list is
// fixed at draft start and its order defines round-1 pick order.
type Participant struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

// Room represents a single draft room instance.
type Room struct {
	ID           uuid.UUID     `json:"id"`
	Status       RoomStatus    `json:"status"`
	Settings     DraftSettings `json:"settings"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"created_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// TotalPicks returns how many picks a full draft of this room produces.
func (r *Room) TotalPicks() int {
	return r.Settings.TotalRounds * len(r.Participants)
}
