package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService is the corpus registry: the catalog of ingested items the
// index is rebuilt from.
type CorpusService struct {
	store driven.CorpusStore
}

// NewCorpusService creates a corpus registry backed by store.
func NewCorpusService(store driven.CorpusStore) *CorpusService {
	return &CorpusService{store: store}
}

// Register records a newly ingested item.
func (s *CorpusService) Register(ctx context.Context, entry domain.CorpusEntry) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if entry.ID == "" || !entry.Type.IsValid() {
		return domain.ErrInvalidInput
	}
	if err := s.store.Save(ctx, entry); err != nil {
		return fmt.Errorf("register %s: %w", entry.Name, err)
	}
	return nil
}

// List returns every registered entry in ingestion order.
func (s *CorpusService) List(ctx context.Context) ([]domain.CorpusEntry, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.List(ctx)
}

// Get retrieves an entry by id.
func (s *CorpusService) Get(ctx context.Context, id string) (*domain.CorpusEntry, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.Get(ctx, id)
}

// Remove is a stub. Deleting content is out of scope; the entry stays
// registered and the index is left unchanged.
func (s *CorpusService) Remove(_ context.Context, _ string) error {
	return domain.ErrNotImplemented
}
