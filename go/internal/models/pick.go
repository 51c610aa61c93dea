package models

import (
	"time"

	"github.com/google/uuid"
)

// Pick represents one committed draft selection.
type Pick struct {
	ID         uuid.UUID `json:"id"`
	RoomID     uuid.UUID `json:"room_id"`
	PickNumber int       `json:"pick_number"` // 1-based, unique within the room
	Round      int       `json:"round"`
	PlayerID   uuid.UUID `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Position   Position  `json:"position"`
	PickedBy   uuid.UUID `json:"picked_by"`
	IsAuto     bool      `json:"is_auto"`
	PickedAt   time.Time `json:"picked_at"`
}

// QueuedPlayer is one entry in a participant's ordered fallback queue.
type QueuedPlayer struct {
	PlayerID   uuid.UUID `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Position   Position  `json:"position"`
	QueuedAt   time.Time `json:"queued_at"`
}
