package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies a room event.
type Type string

const (
	TypeRoomStarted   Type = "RoomStarted"
	TypeRoomPaused    Type = "RoomPaused"
	TypeRoomResumed   Type = "RoomResumed"
	TypeRoomCompleted Type = "RoomCompleted"
	TypePickStarted   Type = "PickStarted"
	TypePickMade      Type = "PickMade"
	TypeQueueUpdated  Type = "QueueUpdated"
	TypeTimerTick     Type = "TimerTick"
)

// Envelope is the wire structure for all room events.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	RoomID    uuid.UUID       `json:"room_id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEnvelope wraps a payload into an Envelope, marshaling the payload.
func NewEnvelope(roomID uuid.UUID, typ Type, at time.Time, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Envelope{
		ID:        uuid.New(),
		RoomID:    roomID,
		Type:      typ,
		Timestamp: at,
		Data:      data,
	}, nil
}

// ParsePayload unmarshals the envelope data into its typed payload struct.
func ParsePayload(env Envelope) (any, error) {
	switch env.Type {
	case TypeRoomStarted:
		return parseAs[RoomStartedPayload](env)
	case TypeRoomPaused:
		return parseAs[RoomPausedPayload](env)
	case TypeRoomResumed:
		return parseAs[RoomResumedPayload](env)
	case TypeRoomCompleted:
		return parseAs[RoomCompletedPayload](env)
	case TypePickStarted:
		return parseAs[PickStartedPayload](env)
	case TypePickMade:
		return parseAs[PickMadePayload](env)
	case TypeQueueUpdated:
		return parseAs[QueueUpdatedPayload](env)
	case TypeTimerTick:
		return parseAs[TimerTickPayload](env)
	default:
		return nil, fmt.Errorf("unknown event type: %s", env.Type)
	}
}

func parseAs[T any](env Envelope) (T, error) {
	var payload T
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return payload, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return payload, nil
}
