package orchestrator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/mcdev12/bestball/go/internal/playerpool"
)

// Strategy chooses the player an expired timer drafts on a participant's
// behalf. needsReview is true when the selection had to ignore roster
// limits and the room should be flagged for an admin.
type Strategy interface {
	Select(snap room.Snapshot, participantID uuid.UUID) (choice models.Player, needsReview bool, err error)
}

// QueueFirstStrategy is the production policy:
//  1. first entry in the participant's queue that is still undrafted,
//  2. otherwise the best-ADP available player whose position still has
//     roster room,
//  3. otherwise the best-ADP available player unconditionally, with the
//     review flag set.
type QueueFirstStrategy struct {
	pool *playerpool.Pool
}

// NewQueueFirstStrategy constructs the production autopick strategy.
func NewQueueFirstStrategy(pool *playerpool.Pool) *QueueFirstStrategy {
	return &QueueFirstStrategy{pool: pool}
}

// Select implements Strategy.
func (s *QueueFirstStrategy) Select(snap room.Snapshot, participantID uuid.UUID) (models.Player, bool, error) {
	drafted := snap.State.DraftedPlayers()

	// Queues are filtered of drafted players at every commit, but the check
	// here keeps the strategy safe against stale snapshots.
	for _, entry := range snap.State.Queue(participantID) {
		if _, taken := drafted[entry.PlayerID]; taken {
			continue
		}
		if player, ok := s.pool.ByID(entry.PlayerID); ok {
			return player, false, nil
		}
	}

	settings := snap.State.Room.Settings
	counts := snap.State.RosterCounts(participantID)

	var fallback *models.Player
	for _, player := range s.pool.Ranked() {
		if _, taken := drafted[player.ID]; taken {
			continue
		}
		if fallback == nil {
			p := player
			fallback = &p
		}
		if settings.RosterLimits != nil {
			if lim, ok := settings.RosterLimits[player.Position]; ok && lim.Max > 0 && counts[player.Position] >= lim.Max {
				continue
			}
		}
		return player, false, nil
	}

	// No player satisfies roster constraints. Should not occur under a
	// well-formed ruleset; draft the best available anyway and flag the
	// room.
	if fallback != nil {
		return *fallback, true, nil
	}
	return models.Player{}, false, fmt.Errorf("no available players for participant %s", participantID)
}

// RandomStrategy drafts a uniformly random available player. Load-test and
// simulation use only.
type RandomStrategy struct {
	pool *playerpool.Pool
	rng  *rand.Rand
}

// NewRandomStrategy constructs a RandomStrategy with its own seed.
func NewRandomStrategy(pool *playerpool.Pool) *RandomStrategy {
	return &RandomStrategy{
		pool: pool,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Select implements Strategy.
func (s *RandomStrategy) Select(snap room.Snapshot, participantID uuid.UUID) (models.Player, bool, error) {
	drafted := snap.State.DraftedPlayers()
	var available []models.Player
	for _, player := range s.pool.Ranked() {
		if _, taken := drafted[player.ID]; !taken {
			available = append(available, player)
		}
	}
	if len(available) == 0 {
		return models.Player{}, false, fmt.Errorf("no available players for participant %s", participantID)
	}
	return available[s.rng.Intn(len(available))], false, nil
}
