package playerpool

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRanking(t *testing.T) {
	early := models.Player{ID: uuid.New(), FullName: "Early", Position: models.PositionRB, ADP: 1.5}
	mid := models.Player{ID: uuid.New(), FullName: "Mid", Position: models.PositionWR, ADP: 20.3}
	late := models.Player{ID: uuid.New(), FullName: "Late", Position: models.PositionTE, ADP: 150.0}

	// Same ADP, higher projection ranks first.
	tiedLow := models.Player{ID: uuid.New(), FullName: "Tied Low", Position: models.PositionQB, ADP: 20.3, ProjectedPoints: 200}
	tiedHigh := models.Player{ID: uuid.New(), FullName: "Tied High", Position: models.PositionQB, ADP: 20.3, ProjectedPoints: 310}

	pool := New([]models.Player{late, tiedLow, early, tiedHigh, mid})

	require.Equal(t, 5, pool.Size())
	ranked := pool.Ranked()
	assert.Equal(t, early.ID, ranked[0].ID)
	assert.Equal(t, late.ID, ranked[4].ID)

	tieStart := 1
	assert.Equal(t, 20.3, ranked[tieStart].ADP)
	var projections []float64
	for _, p := range ranked[tieStart : tieStart+3] {
		if p.ADP == 20.3 && p.Position == models.PositionQB {
			projections = append(projections, p.ProjectedPoints)
		}
	}
	require.Len(t, projections, 2)
	assert.Equal(t, 310.0, projections[0], "projection breaks the ADP tie")
}

func TestPoolLookups(t *testing.T) {
	player := models.Player{ID: uuid.New(), FullName: "Someone", Position: models.PositionWR, ADP: 3}
	pool := New([]models.Player{player})

	got, ok := pool.ByID(player.ID)
	require.True(t, ok)
	assert.Equal(t, player.FullName, got.FullName)

	_, ok = pool.ByID(uuid.New())
	assert.False(t, ok)

	pos, err := pool.PositionOf(player.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PositionWR, pos)

	_, err = pool.PositionOf(uuid.New())
	assert.Error(t, err)
}
