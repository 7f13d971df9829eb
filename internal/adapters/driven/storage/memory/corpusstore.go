package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore is an in-memory implementation of driven.CorpusStore.
type CorpusStore struct {
	mu      sync.RWMutex
	entries map[string]domain.CorpusEntry
	order   map[string]int
	seq     int
}

// NewCorpusStore creates a new in-memory corpus store.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{
		entries: make(map[string]domain.CorpusEntry),
		order:   make(map[string]int),
	}
}

// Save stores or replaces an entry. Replacing keeps the original position.
func (s *CorpusStore) Save(_ context.Context, entry domain.CorpusEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.order[entry.ID]; !ok {
		s.order[entry.ID] = s.seq
		s.seq++
	}
	entry.Tags = append([]string(nil), entry.Tags...)
	s.entries[entry.ID] = entry
	return nil
}

// Get retrieves an entry by ID.
func (s *CorpusStore) Get(_ context.Context, id string) (*domain.CorpusEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// List returns all entries in the order they were first saved.
func (s *CorpusStore) List(_ context.Context) ([]domain.CorpusEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.CorpusEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return s.order[result[i].ID] < s.order[result[j].ID]
	})
	return result, nil
}
