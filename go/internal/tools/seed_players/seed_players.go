package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/mcdev12/bestball/go/clients"
	"github.com/mcdev12/bestball/go/clients/rankings_client"
	"github.com/mcdev12/bestball/go/internal/dbconfig"
	"github.com/mcdev12/bestball/go/internal/sqlutil"
)

// seedPlayer matches both the rankings feed and the JSON asset layout
type seedPlayer struct {
	ExternalID      string  `json:"external_id"`
	FullName        string  `json:"full_name"`
	Position        string  `json:"position"`
	NFLTeam         string  `json:"nfl_team"`
	ByeWeek         int     `json:"bye_week"`
	ADP             float64 `json:"adp"`
	ProjectedPoints float64 `json:"projected_points"`
}

func main() {
	ctx := context.Background()

	// 1) Load the pool, from the rankings API when a key is set, else from
	// the JSON asset snapshot
	players, source, err := loadPlayers(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load players: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3) Upsert inside one tx so a partial feed never half-replaces the pool
	total, inserted, updated := len(players), 0, 0
	err = sqlutil.Run(ctx, db, func(tx *sql.Tx) error {
		for _, p := range players {
			team := sqlutil.FromSqlString(sqlutil.ToSqlString(p.NFLTeam), "FA")
			var existed bool
			err := tx.QueryRowContext(ctx, `
                INSERT INTO players (
                  id, external_id, full_name, position, nfl_team,
                  bye_week, adp, projected_points, created_at
                ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
                ON CONFLICT (external_id) DO UPDATE SET
                  full_name = EXCLUDED.full_name,
                  position = EXCLUDED.position,
                  nfl_team = EXCLUDED.nfl_team,
                  bye_week = EXCLUDED.bye_week,
                  adp = EXCLUDED.adp,
                  projected_points = EXCLUDED.projected_points
                RETURNING (xmax <> 0)
            `,
				uuid.New(), p.ExternalID, p.FullName, p.Position, team,
				sqlutil.ToSqlInt32(p.ByeWeek), p.ADP, p.ProjectedPoints,
				time.Now().UTC(),
			).Scan(&existed)
			if err != nil {
				return fmt.Errorf("upsert %s: %w", p.FullName, err)
			}
			if existed {
				updated++
			} else {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf(
		"Players seed (%s): total=%d inserted=%d updated=%d\n",
		source, total, inserted, updated,
	)
}

func loadPlayers(ctx context.Context) ([]seedPlayer, string, error) {
	source := clients.GetHighestPrioritySource()
	if override := os.Getenv("RANKINGS_SOURCE"); override != "" {
		source = clients.RankingSource(override)
		if !clients.ValidateRankingSource(source) {
			return nil, "", fmt.Errorf("unknown rankings source %q", override)
		}
	}

	if source == clients.RankingSourceUnderdog {
		if apiKey := os.Getenv("RANKINGS_API_KEY"); apiKey != "" {
			client := rankings_client.NewRankingsClient(apiKey)
			ranked, err := client.GetNFLRankings(ctx)
			if err != nil {
				return nil, "", err
			}
			players := make([]seedPlayer, 0, len(ranked))
			for _, r := range ranked {
				players = append(players, seedPlayer{
					ExternalID:      r.ExternalID,
					FullName:        r.FullName,
					Position:        r.Position,
					NFLTeam:         r.Team,
					ByeWeek:         r.ByeWeek,
					ADP:             r.ADP,
					ProjectedPoints: r.ProjectedPoints,
				})
			}
			return players, string(source), nil
		}
		// No key for the API source; fall back to the JSON asset.
	}

	path := os.Getenv("PLAYERS_FILE")
	if path == "" {
		path = "go/internal/assets/players.json"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	var players []seedPlayer
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, "", err
	}
	return players, path, nil
}
