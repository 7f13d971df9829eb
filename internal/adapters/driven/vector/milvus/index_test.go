package milvus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/cosine"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// fakeBackend keeps collections in memory.
type fakeBackend struct {
	collections map[string][]domain.VectorRecord
	inserts     int
	failOn      string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{collections: make(map[string][]domain.VectorRecord)}
}

func (f *fakeBackend) CreateCollection(_ context.Context, name string, _ int) error {
	if f.failOn == "create" {
		return errors.New("create failed")
	}
	f.collections[name] = nil
	return nil
}

func (f *fakeBackend) Insert(_ context.Context, name string, records []domain.VectorRecord) error {
	if f.failOn == "insert" {
		return errors.New("insert failed")
	}
	f.inserts++
	f.collections[name] = append(f.collections[name], records...)
	return nil
}

func (f *fakeBackend) Prepare(context.Context, string) error {
	if f.failOn == "prepare" {
		return errors.New("prepare failed")
	}
	return nil
}

func (f *fakeBackend) Search(_ context.Context, name string, query []float32, k int) ([]domain.RetrievedChunk, error) {
	records, ok := f.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s not found", name)
	}
	vectors := make([][]float32, len(records))
	for i, r := range records {
		vectors[i] = r.Embedding
	}
	var hits []domain.RetrievedChunk
	for _, h := range cosine.TopK(query, vectors, k) {
		r := records[h.Index]
		hits = append(hits, domain.RetrievedChunk{ChunkID: r.ChunkID, DocumentID: r.DocumentID, Text: r.Text, Score: h.Score})
	}
	return hits, nil
}

func (f *fakeBackend) Drop(_ context.Context, name string) error {
	delete(f.collections, name)
	return nil
}

func (f *fakeBackend) Close(context.Context) error { return nil }

func (f *fakeBackend) names() []string {
	var names []string
	for name := range f.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newTestIndex(t *testing.T) (*Index, *fakeBackend) {
	t.Helper()
	b := newFakeBackend()
	x := newIndex(b, t.TempDir())
	seq := 0
	x.newName = func() string {
		seq++
		return fmt.Sprintf("%sgen%d", collectionPrefix, seq)
	}
	return x, b
}

func records(n int) []domain.VectorRecord {
	out := make([]domain.VectorRecord, n)
	for i := range out {
		out[i] = domain.VectorRecord{
			ChunkID:    fmt.Sprintf("c-%d", i),
			DocumentID: "doc-1",
			Text:       fmt.Sprintf("chunk %d", i),
			Embedding:  []float32{float32(i + 1), 1},
		}
	}
	return out
}

func info(n int) domain.IndexInfo {
	return domain.IndexInfo{
		Records:    n,
		Dimensions: 2,
		Model:      "nomic-embed-text",
		Backend:    "milvus",
		BuiltAt:    time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestIndex_NotReady(t *testing.T) {
	x, _ := newTestIndex(t)
	ctx := context.Background()

	_, err := x.Info(ctx)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	_, err = x.Search(ctx, []float32{1, 1}, 3)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestIndex_RebuildAndSearch(t *testing.T) {
	x, b := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, x.Rebuild(ctx, records(3), info(3)))
	assert.Equal(t, []string{"docqa_gen1"}, b.names())

	got, err := x.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, info(3), *got)

	hits, err := x.Search(ctx, []float32{3, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c-2", hits[0].ChunkID)

	_, err = os.Stat(filepath.Join(filepath.Dir(x.pointerPath), "milvus.json"))
	assert.NoError(t, err)
}

func TestIndex_RebuildSwitchesGeneration(t *testing.T) {
	x, b := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, x.Rebuild(ctx, records(3), info(3)))
	require.NoError(t, x.Rebuild(ctx, records(1), info(1)))

	assert.Equal(t, []string{"docqa_gen2"}, b.names(), "previous generation is dropped")
	hits, err := x.Search(ctx, []float32{1, 1}, 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_RebuildBatchesInserts(t *testing.T) {
	x, b := newTestIndex(t)

	require.NoError(t, x.Rebuild(context.Background(), records(insertBatchSize+1), info(insertBatchSize+1)))
	assert.Equal(t, 2, b.inserts)
}

func TestIndex_FailedRebuildKeepsPrevious(t *testing.T) {
	for _, stage := range []string{"create", "insert", "prepare"} {
		t.Run(stage, func(t *testing.T) {
			x, b := newTestIndex(t)
			ctx := context.Background()
			require.NoError(t, x.Rebuild(ctx, records(3), info(3)))

			b.failOn = stage
			assert.Error(t, x.Rebuild(ctx, records(1), info(1)))
			assert.Equal(t, []string{"docqa_gen1"}, b.names(), "partial generation is dropped")

			b.failOn = ""
			got, err := x.Info(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, got.Records)

			hits, err := x.Search(ctx, []float32{1, 1}, 5)
			require.NoError(t, err)
			assert.Len(t, hits, 3)
		})
	}
}

func TestIndex_RebuildValidation(t *testing.T) {
	x, b := newTestIndex(t)
	ctx := context.Background()

	bad := records(2)
	bad[1].Embedding = []float32{1, 2, 3}
	assert.ErrorIs(t, x.Rebuild(ctx, bad, info(2)), domain.ErrDimensionMismatch)

	noDims := info(0)
	noDims.Dimensions = 0
	assert.ErrorIs(t, x.Rebuild(ctx, nil, noDims), domain.ErrInvalidInput)
	assert.Empty(t, b.names())
}

func TestIndex_SearchDimensionMismatch(t *testing.T) {
	x, _ := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, x.Rebuild(ctx, records(2), info(2)))

	_, err := x.Search(ctx, []float32{1, 2, 3}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestIndex_PointerSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	b := newFakeBackend()
	first := newIndex(b, dir)
	require.NoError(t, first.Rebuild(context.Background(), records(2), info(2)))

	second := newIndex(b, dir)
	got, err := second.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Records)
}

func TestNewIndex_RequiresAddress(t *testing.T) {
	_, err := NewIndex(context.Background(), Config{}, t.TempDir())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetField(t *testing.T) {
	var hit domain.RetrievedChunk
	require.NoError(t, setField(&hit, fieldChunkID, "c-1"))
	require.NoError(t, setField(&hit, fieldDocumentID, "doc-1"))
	require.NoError(t, setField(&hit, fieldText, "text"))
	require.NoError(t, setField(&hit, fieldMetadata, `{"source":"a.pdf","row":2}`))

	assert.Equal(t, "c-1", hit.ChunkID)
	assert.Equal(t, "doc-1", hit.DocumentID)
	assert.Equal(t, "a.pdf", hit.Metadata.String(domain.MetaSource))
	row, ok := hit.Metadata["row"].Int()
	assert.True(t, ok)
	assert.Equal(t, int64(2), row)

	assert.Error(t, setField(&hit, fieldMetadata, "not json"))
}
