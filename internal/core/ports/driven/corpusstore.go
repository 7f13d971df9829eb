package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// CorpusStore persists corpus registry entries between runs.
type CorpusStore interface {
	// Save creates or replaces an entry.
	Save(ctx context.Context, entry domain.CorpusEntry) error

	// Get retrieves an entry by id. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.CorpusEntry, error)

	// List returns every entry ordered by ingestion time.
	List(ctx context.Context) ([]domain.CorpusEntry, error)
}
