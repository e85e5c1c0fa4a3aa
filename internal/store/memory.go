// internal/store/memory.go
//
// In-memory session store for Quartiles games.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Sessions idle longer than the TTL are evicted by Sweep.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/quartiles/internal/game"
)

var ErrNotFound = errors.New("store: game not found")

// Store is the persistence interface for game sessions.
type Store interface {
	// Save persists or updates a game.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Delete drops a game. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}

type entry struct {
	g       *game.Game
	touched time.Time
}

// Memory is a map-backed Store.
type Memory struct {
	mu    sync.RWMutex
	games map[string]*entry
	now   func() time.Time
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *Memory {
	return &Memory{games: make(map[string]*entry), now: time.Now}
}

func (m *Memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = &entry{g: g, touched: m.now()}
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e.g, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

// Len reports how many sessions are held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Sweep evicts games not saved within ttl and returns how many went.
func (m *Memory) Sweep(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-ttl)
	n := 0
	for id, e := range m.games {
		if e.touched.Before(cutoff) {
			delete(m.games, id)
			n++
		}
	}
	return n
}
