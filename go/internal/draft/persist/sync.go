package persist

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/rs/zerolog/log"
)

// StoreProvider resolves room stores by id. Satisfied by room.Registry.
type StoreProvider interface {
	Get(roomID uuid.UUID) (*room.Store, bool)
}

// RemoteApplier feeds remote writes into the local room stores. Every
// remote event goes through the same validated UpdateState path as a local
// request: a stale remote pick is rejected, never silently merged.
type RemoteApplier struct {
	stores StoreProvider
	source RemoteSource
}

// NewRemoteApplier creates a RemoteApplier.
func NewRemoteApplier(stores StoreProvider, source RemoteSource) *RemoteApplier {
	return &RemoteApplier{stores: stores, source: source}
}

// Run consumes remote events until ctx is cancelled.
func (a *RemoteApplier) Run(ctx context.Context) error {
	ch, err := a.source.Events(ctx)
	if err != nil {
		return err
	}

	log.Info().Msg("remote applier started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-ch:
			if !ok {
				return nil
			}
			a.apply(env)
		}
	}
}

func (a *RemoteApplier) apply(env events.Envelope) {
	st, ok := a.stores.Get(env.RoomID)
	if !ok {
		log.Warn().
			Str("room_id", env.RoomID.String()).
			Str("event_type", string(env.Type)).
			Msg("remote event for unknown room, dropping")
		return
	}

	if err := applyEnvelope(st, env); err != nil {
		// Validation rejections are expected when the remote write is
		// stale; the remote side resyncs from our relayed state.
		log.Warn().
			Err(err).
			Str("room_id", env.RoomID.String()).
			Str("event_type", string(env.Type)).
			Msg("remote write rejected")
	}
}

// applyEnvelope replays one logged event into a store through the validated
// mutation path. Events with no local action (ticks, broadcasts) are
// skipped without error.
func applyEnvelope(st *room.Store, env events.Envelope) error {
	payload, err := events.ParsePayload(env)
	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case events.RoomStartedPayload:
		_, err = st.Start()
	case events.PickMadePayload:
		// Administrative corrections arrive with whatever pick number the
		// operator fixed; gaps are permitted on this path.
		_, _, err = st.SubmitPick(room.ProposedPick{
			PickNumber: p.PickNumber,
			PlayerID:   p.PlayerID,
			PlayerName: p.PlayerName,
			Position:   models.Position(p.Position),
			PickedBy:   p.ParticipantID,
			IsAuto:     p.IsAuto,
			AllowGap:   true,
		})
	case events.RoomPausedPayload:
		_, err = st.Pause(p.Reason)
	case events.RoomResumedPayload:
		_, err = st.Resume()
	default:
		return nil
	}
	return err
}
