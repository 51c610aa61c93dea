package playerpool

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/models"
)

// Pool is a pre-loaded, read-only snapshot of the draftable player universe.
// Lookups are synchronous and allocation-free where possible; the serialized
// mutation path inside a room store may call into it directly.
type Pool struct {
	byID   map[uuid.UUID]models.Player
	ranked []models.Player // sorted by ADP ascending
}

// New builds a Pool from a player list. Players are ranked by ADP; ties
// break on projected points descending.
func New(players []models.Player) *Pool {
	byID := make(map[uuid.UUID]models.Player, len(players))
	ranked := append([]models.Player(nil), players...)
	for _, p := range players {
		byID[p.ID] = p
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ADP != ranked[j].ADP {
			return ranked[i].ADP < ranked[j].ADP
		}
		return ranked[i].ProjectedPoints > ranked[j].ProjectedPoints
	})
	return &Pool{byID: byID, ranked: ranked}
}

// ByID looks up a player by id.
func (p *Pool) ByID(id uuid.UUID) (models.Player, bool) {
	player, ok := p.byID[id]
	return player, ok
}

// PositionOf returns a player's position code.
func (p *Pool) PositionOf(id uuid.UUID) (models.Position, error) {
	player, ok := p.byID[id]
	if !ok {
		return "", fmt.Errorf("unknown player: %s", id)
	}
	return player.Position, nil
}

// Ranked returns all players in ADP order. Callers must not mutate the
// returned slice.
func (p *Pool) Ranked() []models.Player {
	return p.ranked
}

// Size returns the number of players in the pool.
func (p *Pool) Size() int {
	return len(p.ranked)
}
