package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Documents are held in their encoded form so that callers can check the
// exact bytes a write produced.
type DocumentStore struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	writes int
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string][]byte),
	}
}

// Get decodes the document stored under key.
// A missing document is returned as an empty history.
func (s *DocumentStore) Get(_ context.Context, key string) (*domain.History, error) {
	s.mu.RLock()
	data, ok := s.docs[key]
	s.mu.RUnlock()

	if !ok {
		return &domain.History{}, nil
	}
	return domain.DecodeHistory(data)
}

// Update encodes history and stores it under key.
func (s *DocumentStore) Update(_ context.Context, key string, history domain.History) error {
	data, err := history.Encode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = data
	s.writes++
	return nil
}

// Put stores raw bytes under key, bypassing encoding.
func (s *DocumentStore) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = append([]byte(nil), data...)
}

// Raw returns the bytes stored under key.
func (s *DocumentStore) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Writes returns the number of successful Update calls.
func (s *DocumentStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
