package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IndexService owns the vector index lifecycle.
type IndexService interface {
	// Rebuild re-fetches and re-chunks the whole corpus and replaces the index.
	Rebuild(ctx context.Context) (*domain.RebuildResult, error)

	// Status describes the active index. Returns domain.ErrIndexNotReady
	// when nothing has been built.
	Status(ctx context.Context) (*domain.IndexInfo, error)

	// Retrieve returns up to k chunks most similar to the query text.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}
