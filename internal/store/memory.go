// internal/store/memory.go
//
// In-memory implementation of Store.
// Used by default and in tests, when sessions need not survive a restart.
//
// Characteristics:
//   - Snapshots are kept by value keyed by session ID, so callers never
//     share state through the map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/voiceguess/internal/session"
)

type memory struct {
	mu       sync.RWMutex
	sessions map[string]session.Snapshot
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]session.Snapshot)}
}

func (m *memory) Save(_ context.Context, snap session.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[snap.ID] = snap
	return nil
}

func (m *memory) Get(_ context.Context, id string) (session.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if snap, ok := m.sessions[id]; ok {
		return snap, nil
	}
	return session.Snapshot{}, ErrNotFound
}

func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memory) Prune(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, snap := range m.sessions {
		if snap.UpdatedAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memory) Close() error { return nil }
