package store

import (
	"sync"
)

// Memory is an in-memory Store used by tests and dry runs
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// List returns the stored collection for a key, defaulting to an empty
// JSON array.
func (m *Memory) List(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[key]
	if !ok {
		return []byte("[]"), nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save replaces the whole collection stored under a key
func (m *Memory) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.data[key] = stored
	return nil
}

// Close is a no-op for the in-memory store
func (m *Memory) Close() error {
	return nil
}
