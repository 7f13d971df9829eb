package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// CorpusService exposes the corpus registry to external actors.
type CorpusService interface {
	// List returns every registered entry in ingestion order.
	List(ctx context.Context) ([]domain.CorpusEntry, error)

	// Get retrieves an entry by id.
	Get(ctx context.Context, id string) (*domain.CorpusEntry, error)

	// Remove deletes an entry. Not supported yet: returns domain.ErrNotImplemented.
	Remove(ctx context.Context, id string) error
}
