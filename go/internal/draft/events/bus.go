package events

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Bus fans committed room events out to registered subscribers over
// channels. Publishing never blocks: a subscriber that falls behind has
// events dropped with a warning rather than stalling the room's commit path.
type Bus struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]chan Envelope
	bufSize int
}

// NewBus creates a Bus whose subscriber channels buffer bufSize events.
func NewBus(bufSize int) *Bus {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Bus{
		subs:    make(map[int]chan Envelope),
		bufSize: bufSize,
	}
}

// Subscribe registers a new subscriber. The returned cancel func removes the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Envelope, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Envelope, b.bufSize)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers the envelope to all subscribers.
func (b *Bus) Publish(env Envelope) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- env:
		default:
			log.Warn().
				Int("subscriber", id).
				Str("room_id", env.RoomID.String()).
				Str("event_type", string(env.Type)).
				Msg("subscriber channel full, dropping event")
		}
	}
}
