package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorIndex stores vector records and answers similarity queries.
// The index is always replaced as a whole; there is no incremental upsert.
type VectorIndex interface {
	// Rebuild atomically replaces every stored record. On error the
	// previously stored records remain active.
	Rebuild(ctx context.Context, records []domain.VectorRecord, info domain.IndexInfo) error

	// Search returns up to k records ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error)

	// Info describes the active index. Returns domain.ErrIndexNotReady
	// if no rebuild has completed.
	Info(ctx context.Context) (*domain.IndexInfo, error)

	// Close releases resources.
	Close() error
}
