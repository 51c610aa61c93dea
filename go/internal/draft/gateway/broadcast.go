package gateway

import (
	"context"

	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/rs/zerolog/log"
)

// Broadcaster bridges the event bus to the connection manager: every
// committed room event fans out to that room's WebSocket clients.
type Broadcaster struct {
	bus *events.Bus
	cm  *ConnectionManager
}

// NewBroadcaster creates a Broadcaster.
func NewBroadcaster(bus *events.Bus, cm *ConnectionManager) *Broadcaster {
	return &Broadcaster{bus: bus, cm: cm}
}

// Run consumes bus events until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	ch, cancel := b.bus.Subscribe()
	defer cancel()

	log.Info().Msg("gateway broadcaster started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("gateway broadcaster shutting down")
			return
		case env, ok := <-ch:
			if !ok {
				return
			}
			b.cm.Broadcast(BroadcastMessage{RoomID: env.RoomID, Event: env})
		}
	}
}
