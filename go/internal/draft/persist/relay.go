package persist

import (
	"context"
	"time"

	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/rs/zerolog/log"
)

// RelayConfig tunes the durable relay.
type RelayConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultRelayConfig returns production defaults.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Publisher pushes committed events onto the message bus for other
// instances and downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, env events.Envelope) error
}

// Relay drains the in-process event bus into the durable event log and the
// message bus. It runs entirely outside the store's critical section: a slow
// or failing sink delays persistence, never the draft.
type Relay struct {
	bus       *events.Bus
	adapter   Adapter
	publisher Publisher
	cfg       RelayConfig
}

// NewRelay creates a Relay. publisher may be nil when no message bus is
// configured.
func NewRelay(bus *events.Bus, adapter Adapter, publisher Publisher, cfg RelayConfig) *Relay {
	return &Relay{bus: bus, adapter: adapter, publisher: publisher, cfg: cfg}
}

// Run consumes bus events until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ch, cancel := r.bus.Subscribe()
	defer cancel()

	log.Info().Msg("persistence relay started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("persistence relay shutting down")
			return
		case env, ok := <-ch:
			if !ok {
				return
			}
			if env.Type == events.TypeTimerTick {
				// Ticks are broadcast-only; persisting them would flood the
				// log at 1 Hz per active room.
				continue
			}
			r.deliver(ctx, env)
		}
	}
}

// deliver appends the event to the log and publishes it, retrying each sink
// independently with linear backoff.
func (r *Relay) deliver(ctx context.Context, env events.Envelope) {
	r.withRetry(ctx, env, "event log", func() error {
		return r.adapter.AppendEvent(ctx, env)
	})
	if r.publisher != nil {
		r.withRetry(ctx, env, "message bus", func() error {
			return r.publisher.Publish(ctx, env)
		})
	}
}

func (r *Relay) withRetry(ctx context.Context, env events.Envelope, sink string, fn func() error) {
	var err error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.cfg.RetryDelay * time.Duration(attempt)):
			}
		}
		if err = fn(); err == nil {
			return
		}
	}
	log.Error().
		Err(err).
		Str("sink", sink).
		Str("room_id", env.RoomID.String()).
		Str("event_type", string(env.Type)).
		Int("retries", r.cfg.MaxRetries).
		Msg("failed to deliver event, giving up")
}

// SnapshotWriter mirrors a store's committed snapshots into the adapter.
// One writer runs per active room.
type SnapshotWriter struct {
	adapter Adapter
	cfg     RelayConfig
}

// NewSnapshotWriter creates a SnapshotWriter.
func NewSnapshotWriter(adapter Adapter, cfg RelayConfig) *SnapshotWriter {
	return &SnapshotWriter{adapter: adapter, cfg: cfg}
}

// Watch subscribes to the store and persists every committed snapshot until
// ctx is cancelled. Versioned upserts make delayed retries harmless.
func (w *SnapshotWriter) Watch(ctx context.Context, st *room.Store) {
	snaps, cancel := st.Subscribe(32)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			var err error
			for attempt := 0; attempt <= w.cfg.MaxRetries; attempt++ {
				if attempt > 0 {
					select {
					case <-ctx.Done():
						return
					case <-time.After(w.cfg.RetryDelay * time.Duration(attempt)):
					}
				}
				if err = w.adapter.SaveSnapshot(ctx, snap); err == nil {
					break
				}
			}
			if err != nil {
				log.Error().
					Err(err).
					Str("room_id", snap.State.Room.ID.String()).
					Uint64("version", snap.State.Version).
					Msg("failed to persist snapshot, giving up")
			}
		}
	}
}
