package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/rs/zerolog/log"
)

// StoreProvider resolves room stores by id. Satisfied by room.Registry.
type StoreProvider interface {
	Get(roomID uuid.UUID) (*room.Store, bool)
}

// EventSink receives the scheduling events the orchestrator produces
// (PickStarted, TimerTick). Committed-pick events flow from the stores
// themselves.
type EventSink interface {
	Publish(env events.Envelope)
}

// Config tunes the orchestrator.
type Config struct {
	NumWorkers int
	EmitTicks  bool // broadcast 1 Hz countdown ticks while a pick is armed
	WorkBuffer int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		NumWorkers: 10,
		EmitTicks:  true,
		WorkBuffer: 32,
	}
}

// workItem identifies one expired pick deadline. The pick number tags which
// slot the timeout was armed for so a stale fire is detectable.
type workItem struct {
	roomID     uuid.UUID
	pickNumber int
}

// armedTimer is one outstanding countdown, tagged with the pick number it
// guards.
type armedTimer struct {
	timer      clockwork.Timer
	pickNumber int
	deadline   time.Time
	stopTick   chan struct{}
}

// Orchestrator runs the per-room pick countdowns. A committed pick (human
// or admin) observed via store subscription cancels and re-arms the timer
// for the next pick; an expiry submits an autopick through the same store
// entry point a human pick uses, so races resolve by store serialization
// alone.
type Orchestrator struct {
	stores     StoreProvider
	strat      Strategy
	sink       EventSink
	clock      clockwork.Clock
	cfg        Config
	instanceID string

	workCh chan workItem

	inFlightMu sync.Mutex
	inFlight   map[uuid.UUID]bool

	activeTimersMu sync.Mutex
	activeTimers   map[uuid.UUID]*armedTimer
}

// New creates an orchestrator. sink may be nil.
func New(stores StoreProvider, strat Strategy, sink EventSink, clock clockwork.Clock, cfg Config) *Orchestrator {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = DefaultConfig().NumWorkers
	}
	if cfg.WorkBuffer <= 0 {
		cfg.WorkBuffer = cfg.NumWorkers * 2
	}
	return &Orchestrator{
		stores:       stores,
		strat:        strat,
		sink:         sink,
		clock:        clock,
		cfg:          cfg,
		instanceID:   uuid.New().String()[:8],
		workCh:       make(chan workItem, cfg.WorkBuffer),
		inFlight:     make(map[uuid.UUID]bool),
		activeTimers: make(map[uuid.UUID]*armedTimer),
	}
}

// Run starts the worker pool and blocks until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	log.Info().Str("instance", o.instanceID).Int("workers", o.cfg.NumWorkers).Msg("orchestrator started")

	var wg sync.WaitGroup
	for i := 0; i < o.cfg.NumWorkers; i++ {
		wg.Add(1)
		go o.worker(ctx, &wg, i)
	}

	<-ctx.Done()
	log.Info().Str("instance", o.instanceID).Msg("orchestrator shutting down")
	o.cancelAllTimers()
	wg.Wait()
	return nil
}

// Watch subscribes to a room store and drives the timer state machine off
// its committed snapshots. The watch outlives completion: an admin reset
// returns the room to ACTIVE through the same store, and the next snapshot
// re-arms the countdown. Blocks until ctx is cancelled; run it in its own
// goroutine per room.
func (o *Orchestrator) Watch(ctx context.Context, st *room.Store) {
	snaps, cancel := st.Subscribe(16)
	defer cancel()

	roomID := st.Room().ID

	// Pick up whatever state the room is already in.
	o.onSnapshot(ctx, st, st.Snapshot())

	for {
		select {
		case <-ctx.Done():
			o.cancelTimer(roomID)
			return
		case snap, ok := <-snaps:
			if !ok {
				o.cancelTimer(roomID)
				return
			}
			o.onSnapshot(ctx, st, snap)
			if snap.Derived.IsComplete {
				log.Info().
					Str("room_id", roomID.String()).
					Str("instance", o.instanceID).
					Msg("room complete, countdown idle")
			}
		}
	}
}

// onSnapshot arms or cancels the room's countdown to match committed state.
func (o *Orchestrator) onSnapshot(ctx context.Context, st *room.Store, snap room.Snapshot) {
	roomID := snap.State.Room.ID
	switch {
	case snap.Derived.IsComplete:
		o.cancelTimer(roomID)
	case snap.State.Room.Status == models.RoomStatusActive:
		o.armTimer(ctx, st, snap)
	default:
		// waiting or paused
		o.cancelTimer(roomID)
	}
}

// Deadline reports the armed countdown for a room, for resync responses.
func (o *Orchestrator) Deadline(roomID uuid.UUID) (pickNumber int, deadline time.Time, ok bool) {
	o.activeTimersMu.Lock()
	defer o.activeTimersMu.Unlock()
	at, exists := o.activeTimers[roomID]
	if !exists {
		return 0, time.Time{}, false
	}
	return at.pickNumber, at.deadline, true
}

// worker consumes expired deadlines and submits autopicks.
func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case item := <-o.workCh:
			if err := o.handleTimeout(ctx, item); err != nil {
				log.Error().
					Err(err).
					Str("room_id", item.roomID.String()).
					Int("pick_number", item.pickNumber).
					Int("worker_id", workerID).
					Str("instance", o.instanceID).
					Msg("timeout handling failed")
			}
			o.inFlightMu.Lock()
			delete(o.inFlight, item.roomID)
			o.inFlightMu.Unlock()
		}
	}
}

// handleTimeout fires the autopick for an expired pick. The pick is
// submitted through the same validated store path as a human pick; losing a
// race to a concurrent human submission surfaces as PICK_NUMBER_MISMATCH
// and is not an error.
func (o *Orchestrator) handleTimeout(ctx context.Context, item workItem) error {
	st, ok := o.stores.Get(item.roomID)
	if !ok {
		log.Warn().Str("room_id", item.roomID.String()).Msg("timeout for unknown room")
		return nil
	}

	snap := st.Snapshot()
	if snap.State.Room.Status != models.RoomStatusActive || snap.Derived.CurrentPickNumber != item.pickNumber {
		// A pick landed (or the room paused) between expiry and now.
		log.Debug().
			Str("room_id", item.roomID.String()).
			Int("armed_pick", item.pickNumber).
			Int("current_pick", snap.Derived.CurrentPickNumber).
			Msg("stale timeout, skipping autopick")
		return nil
	}

	participantID := snap.Derived.CurrentPicker.ID
	choice, needsReview, err := o.strat.Select(snap, participantID)
	if err != nil {
		return err
	}

	log.Info().
		Str("room_id", item.roomID.String()).
		Int("pick_number", item.pickNumber).
		Str("participant_id", participantID.String()).
		Str("player_id", choice.ID.String()).
		Bool("needs_review", needsReview).
		Msg("autopick firing")

	_, _, err = st.SubmitPick(room.ProposedPick{
		PickNumber: item.pickNumber,
		PlayerID:   choice.ID,
		PlayerName: choice.FullName,
		Position:   choice.Position,
		PickedBy:   participantID,
		IsAuto:     true,
	})
	if err != nil {
		var verr *room.ValidationError
		if errors.As(err, &verr) && verr.Code == room.CodePickNumberMismatch {
			log.Debug().
				Str("room_id", item.roomID.String()).
				Int("pick_number", item.pickNumber).
				Msg("autopick lost race to human pick")
			return nil
		}
		return err
	}

	if needsReview {
		if _, err := st.MarkNeedsReview(); err != nil {
			log.Error().Err(err).Str("room_id", item.roomID.String()).Msg("failed to flag room for review")
		}
	}
	return nil
}
