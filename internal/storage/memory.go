package storage

import (
	"strings"
	"sync"
)

// Memory implements Store with a mutex-guarded in-process map. It is the
// default backend for tests and for demo runs that don't need durability.
type Memory struct {
	items map[string][]byte
	mutex sync.RWMutex
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		items: make(map[string][]byte),
	}
}

// Get returns the value for key and whether it exists
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, exists := m.items[key]
	if !exists {
		return nil, false, nil
	}

	// Copy so callers can't mutate the stored blob
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set stores a value under key
func (m *Memory) Set(key string, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.items[key] = stored
	return nil
}

// Delete removes a key
func (m *Memory) Delete(key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.items, key)
	return nil
}

// Keys returns all keys with the given prefix
func (m *Memory) Keys(prefix string) ([]string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var keys []string
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
