package events

import (
	"time"

	"github.com/google/uuid"
)

// Event payload types shared between the room core, orchestrator, gateway
// and persistence relay.

// RoomStartedPayload is emitted when the first pick timer starts.
type RoomStartedPayload struct {
	RoomID       uuid.UUID `json:"room_id"`
	StartedAt    time.Time `json:"started_at"`
	TotalRounds  int       `json:"total_rounds"`
	TotalPicks   int       `json:"total_picks"`
	Participants int       `json:"participants"`
}

// PickStartedPayload is emitted when a pick goes on the clock.
type PickStartedPayload struct {
	PickNumber    int       `json:"pick_number"`
	Round         int       `json:"round"`
	ParticipantID uuid.UUID `json:"participant_id"`
	StartedAt     time.Time `json:"started_at"`
	TimeoutAt     time.Time `json:"timeout_at"`
	PickTimerSec  int       `json:"pick_timer_sec"`
}

// PickMadePayload is emitted when a pick commits.
type PickMadePayload struct {
	PickID        uuid.UUID `json:"pick_id"`
	PickNumber    int       `json:"pick_number"`
	Round         int       `json:"round"`
	ParticipantID uuid.UUID `json:"participant_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	PlayerName    string    `json:"player_name"`
	Position      string    `json:"position"`
	IsAuto        bool      `json:"is_auto"`
	MadeAt        time.Time `json:"made_at"`
}

// RoomPausedPayload is emitted when an admin pauses the room.
type RoomPausedPayload struct {
	RoomID   uuid.UUID `json:"room_id"`
	PausedAt time.Time `json:"paused_at"`
	Reason   string    `json:"reason"`
}

// RoomResumedPayload is emitted when a paused room resumes.
type RoomResumedPayload struct {
	RoomID    uuid.UUID `json:"room_id"`
	ResumedAt time.Time `json:"resumed_at"`
}

// RoomCompletedPayload is emitted once the final pick commits.
type RoomCompletedPayload struct {
	RoomID      uuid.UUID `json:"room_id"`
	CompletedAt time.Time `json:"completed_at"`
	TotalPicks  int       `json:"total_picks"`
}

// QueueUpdatedPayload is emitted when a participant edits their queue.
type QueueUpdatedPayload struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	QueueSize     int       `json:"queue_size"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TimerTickPayload carries periodic countdown updates for connected clients.
// Ticks are broadcast-only; they are suppressed on the persistence path.
type TimerTickPayload struct {
	PickNumber       int       `json:"pick_number"`
	ParticipantID    uuid.UUID `json:"participant_id"`
	TimeRemainingSec int       `json:"time_remaining_sec"`
	TickedAt         time.Time `json:"ticked_at"`
}
