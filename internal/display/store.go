// Package display holds the last-applied audience-display settings per
// tournament, replayed to connections that join after the change was
// broadcast. Every write replaces the prior value in full.
package display

import (
	"context"
	"sync"

	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
)

type Store interface {
	Put(ctx context.Context, s events.DisplaySettings) error
	Get(ctx context.Context, tournamentID string) (events.DisplaySettings, bool, error)
}

// MemoryStore is the in-process implementation, used in tests and in
// redis-less deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	settings map[string]events.DisplaySettings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settings: make(map[string]events.DisplaySettings)}
}

func (m *MemoryStore) Put(_ context.Context, s events.DisplaySettings) error {
	m.mu.Lock()
	m.settings[s.TournamentID] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, tournamentID string) (events.DisplaySettings, bool, error) {
	m.mu.RLock()
	s, ok := m.settings[tournamentID]
	m.mu.RUnlock()
	return s, ok, nil
}
