package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

type indexFixture struct {
	*ingestFixture
	index    *IndexService
	vectors  *memory.VectorIndex
	embedder *mockEmbeddingService
}

func newIndexFixture(t *testing.T, settings domain.VectorSettings) *indexFixture {
	t.Helper()

	f := newIngestFixture()
	pipeline, err := postprocessors.NewDefaultPipeline(domain.ChunkingSettings{Size: 1000, Overlap: 200})
	require.NoError(t, err)

	if settings.Backend == "" {
		settings.Backend = domain.VectorBackendSQLite
	}
	embedder := &mockEmbeddingService{}
	vectors := memory.NewVectorIndex()
	index := NewIndexService(f.corpus, f.service, pipeline, embedder, vectors, settings)
	index.now = func() time.Time { return testNow }

	return &indexFixture{ingestFixture: f, index: index, vectors: vectors, embedder: embedder}
}

func (f *indexFixture) addFile(t *testing.T, name, content string) {
	t.Helper()
	_, err := f.service.IngestFile(context.Background(), domain.FileSource{
		Name:           name,
		Content:        []byte(content),
		Classification: domain.Classification{Category: "tax"},
	})
	require.NoError(t, err)
}

func TestIndexService_RebuildEmptyCorpus(t *testing.T) {
	f := newIndexFixture(t, domain.VectorSettings{})

	_, err := f.index.Rebuild(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)

	_, err = f.index.Status(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestIndexService_RetrieveBeforeRebuild(t *testing.T) {
	f := newIndexFixture(t, domain.VectorSettings{})
	f.addFile(t, "a.txt", "Tax deductions apply to X.")

	_, err := f.index.Retrieve(context.Background(), "deductions", 3)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestIndexService_RebuildAndRetrieve(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture(t, domain.VectorSettings{})
	f.addFile(t, "deductions.txt", "Tax deductions apply to X.")
	f.addFile(t, "weather.txt", "Sunny weather expected tomorrow afternoon.")

	result, err := f.index.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 2, result.Chunks)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, domain.IndexInfo{
		Records:    2,
		Dimensions: mockDims,
		Model:      "mock-embed",
		Backend:    "sqlite",
		BuiltAt:    testNow,
	}, result.Info)

	info, err := f.index.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Records)

	hits, err := f.index.Retrieve(ctx, "tax deductions apply", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Tax deductions apply to X.", hits[0].Text)
	assert.Equal(t, "deductions.txt", hits[0].Metadata.String(domain.MetaSource))
	assert.Equal(t, "id-1", hits[0].Metadata.String(domain.MetaDocID))
	assert.Equal(t, "tax", hits[0].Metadata.String(domain.MetaCategory))
}

func TestIndexService_RetrieveValidation(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture(t, domain.VectorSettings{})
	f.addFile(t, "a.txt", "alpha beta gamma")
	_, err := f.index.Rebuild(ctx)
	require.NoError(t, err)

	_, err = f.index.Retrieve(ctx, "   ", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.embedder.embedErr = errors.New("provider down")
	_, err = f.index.Retrieve(ctx, "alpha", 3)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
}

func TestIndexService_EmbeddingFailureKeepsPreviousIndex(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture(t, domain.VectorSettings{})
	f.addFile(t, "a.txt", "Tax deductions apply to X.")
	_, err := f.index.Rebuild(ctx)
	require.NoError(t, err)

	f.addFile(t, "b.txt", "Another document about refunds.")
	f.embedder.batchErr = errors.New("rate limited")

	_, err = f.index.Rebuild(ctx)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	info, err := f.index.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Records)

	hits, err := f.index.Retrieve(ctx, "refunds", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Tax deductions apply to X.", hits[0].Text)
}

func TestIndexService_IndexWriteFailureKeepsPreviousIndex(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture(t, domain.VectorSettings{})
	f.addFile(t, "a.txt", "first")
	_, err := f.index.Rebuild(ctx)
	require.NoError(t, err)

	f.addFile(t, "b.txt", "second")
	f.vectors.FailNextRebuild()

	_, err = f.index.Rebuild(ctx)
	assert.ErrorIs(t, err, memory.ErrInjected)

	info, err := f.index.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Records)
}

func TestIndexService_RebuildSkipsUnreadableEntries(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture(t, domain.VectorSettings{})
	f.addFile(t, "kept.txt", "still here")
	f.addFile(t, "lost.txt", "blob removed")
	require.NoError(t, f.blobs.Delete(ctx, "documents/id-2.txt"))

	result, err := f.index.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Chunks)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "lost.txt", result.Skipped[0].Item)
	assert.ErrorIs(t, result.Skipped[0].Err, domain.ErrExtractionFailed)
}

func TestIndexService_RebuildOnlyUnreadableEntries(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture(t, domain.VectorSettings{})
	f.addFile(t, "lost.txt", "blob removed")
	require.NoError(t, f.blobs.Delete(ctx, "documents/id-1.txt"))

	_, err := f.index.Rebuild(ctx)
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
}

func TestIndexService_BatchesEmbedConcurrently(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture(t, domain.VectorSettings{BatchSize: 2, Workers: 3})

	var rows strings.Builder
	rows.WriteString("term,meaning\n")
	for i := range 7 {
		fmt.Fprintf(&rows, "term%d,meaning number %d\n", i, i)
	}
	f.addFile(t, "glossary.csv", rows.String())

	result, err := f.index.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Documents)
	assert.Equal(t, 7, result.Chunks)
	assert.Equal(t, int32(4), f.embedder.calls.Load())

	hits, err := f.index.Retrieve(ctx, "term3 meaning number 3", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "id-1:3", hits[0].DocumentID)
}

func TestIndexService_SingleBatchFailureAbortsRebuild(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture(t, domain.VectorSettings{BatchSize: 1, Workers: 2})
	f.addFile(t, "a.txt", "one")
	f.addFile(t, "b.txt", "two")
	f.addFile(t, "c.txt", "three")
	f.embedder.batchErr = errors.New("boom")
	f.embedder.failOnCall = 2

	_, err := f.index.Rebuild(ctx)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	_, err = f.index.Status(ctx)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestIndexService_RebuildWithoutEmbedder(t *testing.T) {
	f := newIngestFixture()
	index := NewIndexService(f.corpus, f.service, nil, nil, memory.NewVectorIndex(), domain.VectorSettings{})

	_, err := index.Rebuild(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexService_RebuildCancelled(t *testing.T) {
	f := newIndexFixture(t, domain.VectorSettings{})
	f.addFile(t, "a.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.index.Rebuild(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = f.index.Status(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

// cancellingLoader cancels the rebuild context once the first entry loads.
type cancellingLoader struct {
	DocumentLoader
	cancel context.CancelFunc
}

func (l *cancellingLoader) Load(ctx context.Context, entry domain.CorpusEntry) ([]domain.Document, error) {
	docs, err := l.DocumentLoader.Load(ctx, entry)
	l.cancel()
	return docs, err
}

func TestIndexService_RebuildCancelledMidway(t *testing.T) {
	f := newIndexFixture(t, domain.VectorSettings{})
	f.addFile(t, "a.txt", "first")
	f.addFile(t, "b.txt", "second")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.index.loader = &cancellingLoader{DocumentLoader: f.service, cancel: cancel}

	result, err := f.index.Rebuild(ctx)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrEmptyCorpus)
	assert.Equal(t, int32(0), f.embedder.calls.Load())

	_, err = f.index.Status(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestIndexService_RetrieveWaitsForRebuild(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture(t, domain.VectorSettings{})
	f.addFile(t, "a.txt", "Tax deductions apply to X.")
	_, err := f.index.Rebuild(ctx)
	require.NoError(t, err)

	f.addFile(t, "b.txt", "Refunds arrive within six weeks.")
	f.embedder.entered = make(chan struct{})
	f.embedder.release = make(chan struct{})

	rebuilt := make(chan error, 1)
	go func() {
		_, err := f.index.Rebuild(ctx)
		rebuilt <- err
	}()
	<-f.embedder.entered

	type retrieval struct {
		hits []domain.RetrievedChunk
		err  error
	}
	retrieved := make(chan retrieval, 1)
	go func() {
		hits, err := f.index.Retrieve(ctx, "refunds", 5)
		retrieved <- retrieval{hits: hits, err: err}
	}()

	select {
	case got := <-retrieved:
		t.Fatalf("retrieval returned %d hits while the rebuild was running", len(got.hits))
	case <-time.After(50 * time.Millisecond):
	}

	close(f.embedder.release)
	require.NoError(t, <-rebuilt)

	got := <-retrieved
	require.NoError(t, got.err)
	require.Len(t, got.hits, 2)
	texts := []string{got.hits[0].Text, got.hits[1].Text}
	assert.Contains(t, texts, "Refunds arrive within six weeks.")
}
