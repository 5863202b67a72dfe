package exclusion

import (
	"context"
	"sync"
)

// Memory is the in-process fallback Set, used when no exclusion-cache
// backend is configured or a single engine process serves the whole batch.
type Memory struct {
	mu  sync.RWMutex
	ids map[string]bool
}

// NewMemory creates an empty in-memory exclusion set.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]bool)}
}

// Snapshot returns a copy of the current set.
func (m *Memory) Snapshot(context.Context) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.ids))
	for id := range m.ids {
		out[id] = true
	}
	return out, nil
}

// Add claims externalID.
func (m *Memory) Add(_ context.Context, externalID string) error {
	m.mu.Lock()
	m.ids[externalID] = true
	m.mu.Unlock()
	return nil
}

// Close is a no-op; Memory holds no external resource.
func (m *Memory) Close() error { return nil }
