// internal/dataset/store.go

// Package dataset holds the in-memory record collection. The collection is
// immutable once set and only ever replaced wholesale; readers within one
// request therefore always see a consistent snapshot.
package dataset

import (
	"sync"

	"github.com/perfdash/backend-go/internal/dates"
	"github.com/perfdash/backend-go/internal/domain"
)

type Store struct {
	mu      sync.RWMutex
	records []domain.Record
	hash    string
}

func NewStore() *Store {
	return &Store{hash: dates.DatasetHash(nil)}
}

// Replace swaps the whole collection and returns the new content hash.
// Passing nil or an empty slice clears the dataset.
func (s *Store) Replace(records []domain.Record) string {
	copied := make([]domain.Record, len(records))
	copy(copied, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = copied
	s.hash = dates.DatasetHash(copied)
	return s.hash
}

// Records returns the current snapshot. Callers must not mutate it.
func (s *Store) Records() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Hash returns the content hash of the current collection.
func (s *Store) Hash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hash
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
