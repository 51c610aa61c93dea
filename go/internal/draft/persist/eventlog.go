package persist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/sqlc-dev/pqtype"
)

// EventLog is the append-only durable log of committed room events. It uses
// database/sql so it can share a connection with the LISTEN/NOTIFY
// listener.
type EventLog struct {
	db *sql.DB
}

// NewEventLog creates an EventLog.
func NewEventLog(db *sql.DB) *EventLog {
	return &EventLog{db: db}
}

// AppendEvent inserts one committed event. Insertion also fires the
// room_events NOTIFY trigger that other instances listen on.
func (l *EventLog) AppendEvent(ctx context.Context, env events.Envelope) error {
	payload := pqtype.NullRawMessage{RawMessage: env.Data, Valid: len(env.Data) > 0}
	_, err := l.db.ExecContext(ctx, `
        INSERT INTO room_events (id, room_id, event_type, payload, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO NOTHING
    `, env.ID, env.RoomID, string(env.Type), payload, env.Timestamp)
	if err != nil {
		return fmt.Errorf("insert room event: %w", err)
	}
	return nil
}

// FetchSince returns events for a room committed after the given time, in
// commit order. Used for startup replay.
func (l *EventLog) FetchSince(ctx context.Context, roomID uuid.UUID, since time.Time, limit int) ([]events.Envelope, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx, `
        SELECT id, room_id, event_type, payload, created_at
        FROM room_events
        WHERE room_id = $1 AND created_at > $2
        ORDER BY created_at
        LIMIT $3
    `, roomID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query room events: %w", err)
	}
	defer rows.Close()

	var out []events.Envelope
	for rows.Next() {
		var (
			env     events.Envelope
			typ     string
			payload pqtype.NullRawMessage
		)
		if err := rows.Scan(&env.ID, &env.RoomID, &typ, &payload, &env.Timestamp); err != nil {
			return nil, fmt.Errorf("scan room event: %w", err)
		}
		env.Type = events.Type(typ)
		if payload.Valid {
			env.Data = payload.RawMessage
		}
		out = append(out, env)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room events: %w", err)
	}
	return out, nil
}
