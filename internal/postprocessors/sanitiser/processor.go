// Package sanitiser provides the metadata sanitisation processor.
// It runs after chunking and copies the parent document's metadata onto
// every chunk as scalar values, so the vector index never receives
// nested structures.
package sanitiser

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Processor converts loose document metadata into chunk Metadata.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a sanitiser processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "sanitiser"
}

// Process attaches sanitised parent metadata to each chunk. Sequences of
// scalars are joined with a comma; other non-scalar values are dropped.
// Values already present on a chunk take precedence.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	meta, dropped := domain.Sanitize(doc.Metadata)
	if len(dropped) > 0 {
		logger.Debug("document %s: dropped non-scalar metadata %v", doc.ID, dropped)
	}

	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		m := meta.Clone()
		if m == nil {
			m = make(domain.Metadata)
		}
		for k, v := range c.Metadata {
			m[k] = v
		}
		c.Metadata = m
		out[i] = c
	}
	return out, nil
}
