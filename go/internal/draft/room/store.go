package room

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/rs/zerolog/log"
)

// UpdateOptions controls how a single UpdateState call validates and
// notifies.
type UpdateOptions struct {
	// Validate runs the full invariant audit on the transformed state.
	Validate bool
	// StrictValidation turns audit violations into hard commit failures.
	// When false, violations are logged and the commit proceeds; this
	// leniency exists to avoid blocking live drafts on soft inconsistencies
	// introduced by administrative imports or remote replays.
	StrictValidation bool
	// SkipNotify suppresses subscriber and event-sink notification. Used for
	// high-frequency updates that would otherwise flood subscribers.
	SkipNotify bool
}

// DefaultUpdateOptions validates, is lenient, and notifies.
func DefaultUpdateOptions() UpdateOptions {
	return UpdateOptions{Validate: true}
}

// Snapshot is an immutable view of committed state handed to subscribers.
// The contained State is a private clone; readers may inspect it freely.
type Snapshot struct {
	State   *State
	Derived Derived
	Events  []events.Envelope
}

// EventSink receives the domain events produced by committed mutations.
type EventSink interface {
	Publish(env events.Envelope)
}

// Updater is a pure transformation applied to a clone of current state. It
// returns the domain events the mutation produced. Returning an error
// discards the clone; nothing changes.
type Updater func(s *State) ([]events.Envelope, error)

// Store owns the canonical state of one draft room. All mutation funnels
// through UpdateState under a single mutex, so pick submissions, queue
// edits and autopick triggers that race are serialized: either the whole
// transformation commits and observers are notified, or nothing changes.
type Store struct {
	mu    sync.Mutex
	state *State
	clock clockwork.Clock
	sink  EventSink

	subMu   sync.RWMutex
	nextSub int
	subs    map[int]chan Snapshot
}

// NewStore creates a Store for a freshly created room. sink may be nil.
func NewStore(rm models.Room, clock clockwork.Clock, sink EventSink) *Store {
	if rm.Status == "" {
		rm.Status = models.RoomStatusWaiting
	}
	return &Store{
		state: NewState(rm),
		clock: clock,
		sink:  sink,
		subs:  make(map[int]chan Snapshot),
	}
}

// UpdateState applies the updater to a deep clone of current state,
// validates the result, and commits it as the new canonical state.
func (st *Store) UpdateState(fn Updater, opts UpdateOptions) (Snapshot, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.state.Clone()
	evs, err := fn(next)
	if err != nil {
		return Snapshot{}, err
	}

	if opts.Validate {
		if violations := AuditState(next); len(violations) > 0 {
			if opts.StrictValidation {
				return Snapshot{}, violations[0]
			}
			for _, v := range violations {
				log.Warn().
					Str("room_id", next.Room.ID.String()).
					Str("code", string(v.Code)).
					Str("reason", v.Reason).
					Msg("committing state with invariant violation")
			}
		}
	}

	next.Version++
	st.state = next

	snap := Snapshot{
		State:   next.Clone(),
		Derived: ComputeDerived(next),
		Events:  evs,
	}
	if !opts.SkipNotify {
		st.notify(snap)
	}
	return snap, nil
}

// Snapshot returns the current committed state and its derived projections.
func (st *Store) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return Snapshot{
		State:   st.state.Clone(),
		Derived: ComputeDerived(st.state),
	}
}

// Room returns the room record this store owns.
func (st *Store) Room() models.Room {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.Room
}

// Subscribe registers a snapshot channel. Every committed mutation (unless
// SkipNotify) pushes the new snapshot. The returned cancel func removes the
// subscription and closes the channel.
func (st *Store) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	st.subMu.Lock()
	id := st.nextSub
	st.nextSub++
	ch := make(chan Snapshot, buffer)
	st.subs[id] = ch
	st.subMu.Unlock()

	cancel := func() {
		st.subMu.Lock()
		defer st.subMu.Unlock()
		if ch, ok := st.subs[id]; ok {
			delete(st.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (st *Store) notify(snap Snapshot) {
	st.subMu.RLock()
	for id, ch := range st.subs {
		select {
		case ch <- snap:
		default:
			log.Warn().
				Int("subscriber", id).
				Str("room_id", snap.State.Room.ID.String()).
				Msg("snapshot subscriber channel full, dropping update")
		}
	}
	st.subMu.RUnlock()

	if st.sink != nil {
		for _, env := range snap.Events {
			st.sink.Publish(env)
		}
	}
}
