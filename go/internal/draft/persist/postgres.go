package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/mcdev12/bestball/go/internal/models"
)

// Postgres is the production Adapter: snapshots through pgx, the event log
// through the database/sql connection shared with the notify listener.
type Postgres struct {
	*PostgresStore
	*EventLog
}

// NewPostgres combines the snapshot store and event log into one Adapter.
func NewPostgres(snapshots *PostgresStore, log *EventLog) *Postgres {
	return &Postgres{PostgresStore: snapshots, EventLog: log}
}

// PostgresStore persists room state snapshots as opaque JSONB rows.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on an existing pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// SaveSnapshot upserts the room's latest committed state keyed by room id.
// Version guards against clobbering a newer snapshot with a delayed retry.
func (p *PostgresStore) SaveSnapshot(ctx context.Context, snap room.Snapshot) error {
	stateJSON, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("marshal room state: %w", err)
	}

	_, err = p.db.Exec(ctx, `
        INSERT INTO room_states (room_id, status, version, state, updated_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (room_id) DO UPDATE
        SET status = EXCLUDED.status,
            version = EXCLUDED.version,
            state = EXCLUDED.state,
            updated_at = now()
        WHERE room_states.version < EXCLUDED.version
    `, snap.State.Room.ID, string(snap.State.Room.Status), snap.State.Version, stateJSON)
	if err != nil {
		return fmt.Errorf("upsert room snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the last persisted state for a room. Returns nil with
// no error when the room has never been persisted.
func (p *PostgresStore) LoadSnapshot(ctx context.Context, roomID uuid.UUID) (*room.State, error) {
	var stateJSON []byte
	err := p.db.QueryRow(ctx,
		`SELECT state FROM room_states WHERE room_id = $1`, roomID,
	).Scan(&stateJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query room snapshot: %w", err)
	}

	var s room.State
	if err := json.Unmarshal(stateJSON, &s); err != nil {
		return nil, fmt.Errorf("unmarshal room state: %w", err)
	}
	return &s, nil
}

// ListUnfinished returns the persisted state of every room that has not
// completed, with the time its snapshot was written. Completed rooms stay
// in the table for history but are not rebuilt on restart.
func (p *PostgresStore) ListUnfinished(ctx context.Context) ([]PersistedRoom, error) {
	rows, err := p.db.Query(ctx, `
        SELECT state, updated_at
        FROM room_states
        WHERE status != $1
        ORDER BY updated_at
    `, string(models.RoomStatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("query unfinished rooms: %w", err)
	}
	defer rows.Close()

	var out []PersistedRoom
	for rows.Next() {
		var (
			stateJSON []byte
			savedAt   time.Time
		)
		if err := rows.Scan(&stateJSON, &savedAt); err != nil {
			return nil, fmt.Errorf("scan room snapshot: %w", err)
		}
		var s room.State
		if err := json.Unmarshal(stateJSON, &s); err != nil {
			return nil, fmt.Errorf("unmarshal room state: %w", err)
		}
		out = append(out, PersistedRoom{State: &s, SavedAt: savedAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room snapshots: %w", err)
	}
	return out, nil
}
