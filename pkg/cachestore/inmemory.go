package cachestore

import (
	"context"
	"sync"
)

// InMemoryStore is a thread-safe, in-memory Store implementation. It
// satisfies the same contract as the durable stores and is intended for
// tests and embedded use; its contents do not survive a process restart.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[string][]byte),
	}
}

// Get retrieves the record stored under key, or ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers never alias the stored record.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores the record under key, replacing any previous record.
func (s *InMemoryStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = stored
	return nil
}

// Delete removes the record stored under key, if any.
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Close is a no-op for the in-memory store but satisfies the Store interface.
func (s *InMemoryStore) Close() error {
	return nil
}
