package models

import (
	"time"

	"github.com/google/uuid"
)

// Position is an NFL fantasy position code.
type Position string

const (
	PositionQB Position = "QB"
	PositionRB Position = "RB"
	PositionWR Position = "WR"
	PositionTE Position = "TE"
)

// Player represents a draftable player in the pool.
type Player struct {
	ID              uuid.UUID `json:"id"`
	ExternalID      string    `json:"external_id"`
	FullName        string    `json:"full_name"`
	Position        Position  `json:"position"`
	NFLTeam         string    `json:"nfl_team"`
	ByeWeek         int       `json:"bye_week,omitempty"`
	ADP             float64   `json:"adp"` // average draft position; lower drafts earlier
	ProjectedPoints float64   `json:"projected_points"`
	CreatedAt       time.Time `json:"created_at"`
}
