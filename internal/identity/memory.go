package identity

import (
	"context"
	"sync"
)

// MemoryStore keeps identity values in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns a stored value
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores a value
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
