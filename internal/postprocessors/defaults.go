package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
	"github.com/custodia-labs/docqa/internal/postprocessors/sanitiser"
)

// DefaultProcessors is the processor order used for index rebuilds.
var DefaultProcessors = []string{"chunker", "sanitiser"}

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("sanitiser", func(domain.ChunkingSettings) (driven.PostProcessor, error) {
		return sanitiser.New(), nil
	})
}

// NewDefaultPipeline builds the chunker + sanitiser pipeline from settings.
func NewDefaultPipeline(cfg domain.ChunkingSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.Pipeline(cfg, DefaultProcessors...)
}

// buildChunker applies the configured size and overlap. Zero values keep
// the chunker defaults.
func buildChunker(cfg domain.ChunkingSettings) (driven.PostProcessor, error) {
	if cfg.Size < 0 || cfg.Overlap < 0 {
		return nil, fmt.Errorf("%w: chunk size and overlap must not be negative", domain.ErrInvalidInput)
	}
	if cfg.Size > 0 && cfg.Overlap >= cfg.Size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidInput, cfg.Overlap, cfg.Size)
	}

	var opts []chunker.Option
	if cfg.Size > 0 {
		opts = append(opts, chunker.WithChunkSize(cfg.Size))
	}
	if cfg.Overlap > 0 {
		opts = append(opts, chunker.WithOverlap(cfg.Overlap))
	}
	return chunker.New(opts...), nil
}
