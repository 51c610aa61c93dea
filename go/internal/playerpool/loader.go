package playerpool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/rs/zerolog/log"
)

// LoadFromFile reads a player pool snapshot from a JSON asset file.
func LoadFromFile(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read player pool file: %w", err)
	}
	var players []models.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("unmarshal player pool: %w", err)
	}
	log.Info().Int("players", len(players)).Str("path", path).Msg("loaded player pool from file")
	return New(players), nil
}

// LoadFromDB reads the full player table into a pool snapshot. Called once
// at startup; the serialized draft paths only ever touch the in-memory copy.
func LoadFromDB(ctx context.Context, db *pgxpool.Pool) (*Pool, error) {
	rows, err := db.Query(ctx, `
        SELECT id, external_id, full_name, position, nfl_team,
               COALESCE(bye_week, 0), adp, projected_points, created_at
        FROM players
        ORDER BY adp
    `)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(
			&p.ID, &p.ExternalID, &p.FullName, &p.Position, &p.NFLTeam,
			&p.ByeWeek, &p.ADP, &p.ProjectedPoints, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}

	log.Info().Int("players", len(players)).Msg("loaded player pool from database")
	return New(players), nil
}
