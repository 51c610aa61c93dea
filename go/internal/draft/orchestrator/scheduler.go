package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/rs/zerolog/log"
)

// armTimer starts (or confirms) the countdown for the room's current pick.
// The armed timer is tagged with the pick number it guards; at fire time the
// worker rechecks that the room's current pick still matches, so at most one
// autopick fires per pick number even under duplicate timer events.
func (o *Orchestrator) armTimer(ctx context.Context, st *room.Store, snap room.Snapshot) {
	roomID := snap.State.Room.ID
	pickNumber := snap.Derived.CurrentPickNumber

	o.activeTimersMu.Lock()
	if existing, ok := o.activeTimers[roomID]; ok && existing.pickNumber == pickNumber {
		// Already armed for this slot; a queue edit or other non-advancing
		// commit must not restart the countdown.
		o.activeTimersMu.Unlock()
		return
	}
	o.activeTimersMu.Unlock()

	duration := time.Duration(snap.State.Room.Settings.PickTimerSec) * time.Second
	deadline := o.clock.Now().Add(duration)

	at := &armedTimer{
		timer:      o.clock.NewTimer(duration),
		pickNumber: pickNumber,
		deadline:   deadline,
		stopTick:   make(chan struct{}),
	}
	o.replaceTimer(roomID, at)

	go func() {
		select {
		case <-at.timer.Chan():
			o.removeTimer(roomID, at)
			o.enqueueTimeout(ctx, workItem{roomID: roomID, pickNumber: pickNumber})
		case <-at.stopTick:
			// Cancelled by a committed pick, pause, or shutdown.
		case <-ctx.Done():
			o.cancelTimer(roomID)
		}
	}()

	if o.cfg.EmitTicks && o.sink != nil {
		go o.runTicker(ctx, at, roomID, snap.Derived.CurrentPicker.ID)
	}

	o.emitPickStarted(roomID, snap, deadline, duration)

	log.Debug().
		Str("room_id", roomID.String()).
		Int("pick_number", pickNumber).
		Time("deadline", deadline).
		Str("instance", o.instanceID).
		Msg("armed pick countdown")
}

// enqueueTimeout hands an expired deadline to the worker pool, deduplicating
// rooms already in flight.
func (o *Orchestrator) enqueueTimeout(ctx context.Context, item workItem) {
	o.inFlightMu.Lock()
	if o.inFlight[item.roomID] {
		o.inFlightMu.Unlock()
		log.Debug().Str("room_id", item.roomID.String()).Msg("room already in flight, skipping timeout")
		return
	}
	o.inFlight[item.roomID] = true
	o.inFlightMu.Unlock()

	select {
	case o.workCh <- item:
	case <-ctx.Done():
		o.inFlightMu.Lock()
		delete(o.inFlight, item.roomID)
		o.inFlightMu.Unlock()
	}
}

// replaceTimer atomically swaps in a new armed timer, cancelling any
// existing one so a stale countdown can never slip through between Stop and
// delete.
func (o *Orchestrator) replaceTimer(roomID uuid.UUID, at *armedTimer) {
	o.activeTimersMu.Lock()
	defer o.activeTimersMu.Unlock()

	if existing, ok := o.activeTimers[roomID]; ok {
		stopAndDrainTimer(existing.timer)
		close(existing.stopTick)
	}
	o.activeTimers[roomID] = at
}

// cancelTimer stops and removes the room's armed timer, if any.
func (o *Orchestrator) cancelTimer(roomID uuid.UUID) {
	o.activeTimersMu.Lock()
	defer o.activeTimersMu.Unlock()

	if at, ok := o.activeTimers[roomID]; ok {
		stopAndDrainTimer(at.timer)
		close(at.stopTick)
		delete(o.activeTimers, roomID)
	}
}

// removeTimer clears the map entry after a timer fired, but only if the
// entry still belongs to that firing (a re-arm may have replaced it).
func (o *Orchestrator) removeTimer(roomID uuid.UUID, fired *armedTimer) {
	o.activeTimersMu.Lock()
	defer o.activeTimersMu.Unlock()
	if current, ok := o.activeTimers[roomID]; ok && current == fired {
		delete(o.activeTimers, roomID)
	}
}

func (o *Orchestrator) cancelAllTimers() {
	o.activeTimersMu.Lock()
	defer o.activeTimersMu.Unlock()
	for roomID, at := range o.activeTimers {
		stopAndDrainTimer(at.timer)
		close(at.stopTick)
		delete(o.activeTimers, roomID)
	}
}

// stopAndDrainTimer stops a timer and drains its channel so the waiting
// goroutine cannot observe a late fire.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}

// runTicker broadcasts 1 Hz countdown ticks while the timer is armed. Ticks
// go to the event sink only; they never touch the store, so they cannot
// flood snapshot subscribers.
func (o *Orchestrator) runTicker(ctx context.Context, at *armedTimer, roomID, participantID uuid.UUID) {
	ticker := o.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-at.stopTick:
			return
		case now := <-ticker.Chan():
			remaining := int(at.deadline.Sub(now).Seconds())
			if remaining < 0 {
				return
			}
			env, err := events.NewEnvelope(roomID, events.TypeTimerTick, now, events.TimerTickPayload{
				PickNumber:       at.pickNumber,
				ParticipantID:    participantID,
				TimeRemainingSec: remaining,
				TickedAt:         now,
			})
			if err != nil {
				log.Error().Err(err).Msg("failed to build timer tick")
				return
			}
			o.sink.Publish(env)
		}
	}
}

// emitPickStarted announces that a pick went on the clock.
func (o *Orchestrator) emitPickStarted(roomID uuid.UUID, snap room.Snapshot, deadline time.Time, duration time.Duration) {
	if o.sink == nil {
		return
	}
	now := o.clock.Now()
	env, err := events.NewEnvelope(roomID, events.TypePickStarted, now, events.PickStartedPayload{
		PickNumber:    snap.Derived.CurrentPickNumber,
		Round:         snap.Derived.CurrentRound,
		ParticipantID: snap.Derived.CurrentPicker.ID,
		StartedAt:     now,
		TimeoutAt:     deadline,
		PickTimerSec:  int(duration.Seconds()),
	})
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to emit PickStarted")
		return
	}
	o.sink.Publish(env)
}
