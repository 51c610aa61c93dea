package room

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bestball/go/internal/models"
)

// Registry owns one Store per room id. Rooms are independent: no shared
// mutable state crosses room boundaries, only the registry map itself is
// guarded.
type Registry struct {
	mu     sync.RWMutex
	stores map[uuid.UUID]*Store
	clock  clockwork.Clock
	sink   EventSink
}

// NewRegistry creates an empty registry. All stores it creates share the
// clock and event sink.
func NewRegistry(clock clockwork.Clock, sink EventSink) *Registry {
	return &Registry{
		stores: make(map[uuid.UUID]*Store),
		clock:  clock,
		sink:   sink,
	}
}

// Create builds and registers a Store for the room.
func (r *Registry) Create(rm models.Room) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stores[rm.ID]; exists {
		return nil, fmt.Errorf("room %s already registered", rm.ID)
	}
	st := NewStore(rm, r.clock, r.sink)
	r.stores[rm.ID] = st
	return st, nil
}

// Restore registers a Store seeded from previously persisted state, for
// startup recovery. The state is cloned; the caller's copy stays private.
func (r *Registry) Restore(s *State) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stores[s.Room.ID]; exists {
		return nil, fmt.Errorf("room %s already registered", s.Room.ID)
	}
	st := &Store{
		state: s.Clone(),
		clock: r.clock,
		sink:  r.sink,
		subs:  make(map[int]chan Snapshot),
	}
	r.stores[s.Room.ID] = st
	return st, nil
}

// Get looks up the store for a room id.
func (r *Registry) Get(roomID uuid.UUID) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.stores[roomID]
	return st, ok
}

// Remove drops a room's store, typically after completion and archival.
func (r *Registry) Remove(roomID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, roomID)
}

// List returns the ids of all registered rooms.
func (r *Registry) List() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	return ids
}
