package room

import (
	"sync"
)

// Manager lazily creates and serves rooms keyed by chat room id. All
// rooms share the same collaborators.
type Manager struct {
	mu    sync.Mutex
	deps  Deps
	rooms map[int64]*Room
}

// NewManager creates a manager handing the same dependency set to
// every room.
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:  deps,
		rooms: make(map[int64]*Room),
	}
}

// Room returns the room for the id, creating it on first use.
func (m *Manager) Room(id int64) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		r = New(id, m.deps)
		m.rooms[id] = r
	}
	return r
}

// RefreshOdds recomputes quotes in every room with an open betting
// period. Satisfies the scheduler's refresher contract.
func (m *Manager) RefreshOdds() {
	for _, r := range m.snapshot() {
		r.RefreshOdds()
	}
}

func (m *Manager) snapshot() []*Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// Shutdown aborts the active race in every room.
func (m *Manager) Shutdown() {
	for _, r := range m.snapshot() {
		r.Shutdown()
	}
}
