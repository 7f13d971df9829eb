package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// DefaultTopK is the number of chunks retrieved when no k is given.
const DefaultTopK = 6

// DocumentLoader re-reads the documents of a registered entry.
type DocumentLoader interface {
	Load(ctx context.Context, entry domain.CorpusEntry) ([]domain.Document, error)
}

// IndexService rebuilds the vector index from the corpus and serves
// similarity retrieval. A rebuild holds the write lock for its whole
// duration, so retrieval sees either the old or the new index.
type IndexService struct {
	mu sync.RWMutex

	corpus   *CorpusService
	loader   DocumentLoader
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	settings domain.VectorSettings

	now func() time.Time
}

// NewIndexService creates an index service.
func NewIndexService(
	corpus *CorpusService,
	loader DocumentLoader,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	settings domain.VectorSettings,
) *IndexService {
	if settings.BatchSize <= 0 {
		settings.BatchSize = domain.DefaultAppSettings().Vector.BatchSize
	}
	if settings.Workers <= 0 {
		settings.Workers = 1
	}
	return &IndexService{
		corpus:   corpus,
		loader:   loader,
		pipeline: pipeline,
		embedder: embedder,
		index:    index,
		settings: settings,
		now:      time.Now,
	}
}

// Rebuild re-loads and re-chunks every registered entry, embeds all chunks
// and replaces the index. Entries that cannot be loaded are skipped and
// reported. Any embedding failure aborts the rebuild and leaves the
// previous index active.
func (s *IndexService) Rebuild(ctx context.Context) (*domain.RebuildResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Rebuilding index")

	entries, err := s.corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	result := &domain.RebuildResult{}
	var chunks []domain.Chunk

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rebuild interrupted: %w", err)
		}

		docs, err := s.loader.Load(ctx, entry)
		if err != nil {
			if isContextErr(err) {
				return nil, fmt.Errorf("rebuild interrupted: %w", err)
			}
			result.Skipped = append(result.Skipped, asItemError(entry.Name, err))
			logger.Warn("skipping %s: %v", entry.Name, err)
			continue
		}

		for i := range docs {
			docChunks, err := s.pipeline.Process(ctx, &docs[i])
			if err != nil {
				if isContextErr(err) {
					return nil, fmt.Errorf("rebuild interrupted: %w", err)
				}
				result.Skipped = append(result.Skipped, asItemError(docs[i].SourceName, err))
				logger.Warn("skipping %s: %v", docs[i].SourceName, err)
				continue
			}
			chunks = append(chunks, docChunks...)
			result.Documents++
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks produced", domain.ErrEmptyCorpus)
	}
	logger.Info("embedding %d chunks from %d documents", len(chunks), result.Documents)

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.VectorRecord{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Text:       c.Content,
			Embedding:  vectors[i],
			Metadata:   c.Metadata,
		}
	}

	info := domain.IndexInfo{
		Records:    len(records),
		Dimensions: len(vectors[0]),
		Model:      s.embedder.ModelName(),
		Backend:    s.settings.Backend.String(),
		BuiltAt:    s.now(),
	}
	if err := s.index.Rebuild(ctx, records, info); err != nil {
		return nil, fmt.Errorf("replace index: %w", err)
	}

	result.Info = info
	result.Chunks = len(records)
	logger.Info("index rebuilt: %d records, %d dimensions", info.Records, info.Dimensions)
	return result, nil
}

// Status describes the active index.
func (s *IndexService) Status(ctx context.Context) (*domain.IndexInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Info(ctx)
}

// Retrieve embeds the query and returns up to k nearest chunks.
func (s *IndexService) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}
	if k <= 0 {
		k = DefaultTopK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.index.Info(ctx); err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	return s.index.Search(ctx, vec, k)
}

// embedChunks embeds chunk texts in batches on a bounded worker pool.
// The first failure cancels the remaining batches.
func (s *IndexService) embedChunks(parent context.Context, chunks []domain.Chunk) ([][]float32, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pool, err := ants.NewPool(s.settings.Workers)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}
	defer pool.Release()

	vectors := make([][]float32, len(chunks))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(chunks); start += s.settings.BatchSize {
		end := min(start+s.settings.BatchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			got, err := s.embedder.EmbedBatch(ctx, texts)
			if err != nil {
				fail(err)
				return
			}
			if len(got) != len(texts) {
				fail(fmt.Errorf("provider returned %d vectors for %d texts", len(got), len(texts)))
				return
			}
			copy(vectors[start:end], got)
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, firstErr)
	}
	if err := parent.Err(); err != nil {
		return nil, fmt.Errorf("rebuild interrupted: %w", err)
	}

	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dims {
			return nil, fmt.Errorf("%w: %w: chunk %d has %d dimensions, want %d",
				domain.ErrEmbeddingFailed, domain.ErrDimensionMismatch, i, len(v), dims)
		}
	}
	return vectors, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func asItemError(item string, err error) domain.ItemError {
	var ie *domain.ItemError
	if errors.As(err, &ie) {
		return *ie
	}
	return domain.ItemError{Item: item, Err: err}
}
