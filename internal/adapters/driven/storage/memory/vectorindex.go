package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/cosine"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// ErrInjected is returned by Rebuild when FailNextRebuild was set.
var ErrInjected = errors.New("memory: injected rebuild failure")

// VectorIndex is an in-memory implementation of driven.VectorIndex.
type VectorIndex struct {
	mu       sync.RWMutex
	records  []domain.VectorRecord
	vectors  [][]float32
	info     *domain.IndexInfo
	failNext bool
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// FailNextRebuild makes the next Rebuild fail without touching the index.
func (v *VectorIndex) FailNextRebuild() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failNext = true
}

// Rebuild replaces all records.
func (v *VectorIndex) Rebuild(_ context.Context, records []domain.VectorRecord, info domain.IndexInfo) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.failNext {
		v.failNext = false
		return ErrInjected
	}

	vectors := make([][]float32, len(records))
	for i, r := range records {
		if info.Dimensions > 0 && len(r.Embedding) != info.Dimensions {
			return fmt.Errorf("%w: record %s", domain.ErrDimensionMismatch, r.ChunkID)
		}
		vectors[i] = r.Embedding
	}

	v.records = append([]domain.VectorRecord(nil), records...)
	v.vectors = vectors
	v.info = &info
	return nil
}

// Search returns up to k records by descending cosine similarity.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.info == nil {
		return nil, domain.ErrIndexNotReady
	}
	if v.info.Dimensions > 0 && len(query) != v.info.Dimensions {
		return nil, domain.ErrDimensionMismatch
	}

	hits := cosine.TopK(query, v.vectors, k)
	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		r := v.records[h.Index]
		results = append(results, domain.RetrievedChunk{
			ChunkID:    r.ChunkID,
			DocumentID: r.DocumentID,
			Text:       r.Text,
			Metadata:   r.Metadata.Clone(),
			Score:      h.Score,
		})
	}
	return results, nil
}

// Info describes the active index.
func (v *VectorIndex) Info(_ context.Context) (*domain.IndexInfo, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.info == nil {
		return nil, domain.ErrIndexNotReady
	}
	info := *v.info
	return &info, nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}
