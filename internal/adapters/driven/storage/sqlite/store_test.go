package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func testEntry(id string, addedAt time.Time) domain.CorpusEntry {
	return domain.CorpusEntry{
		ID:       id,
		Name:     id + ".pdf",
		Type:     domain.DocumentTypeFile,
		Format:   "pdf",
		Category: "稅務",
		Tags:     []string{"2024", "扣除額"},
		Path:     "documents/" + id + ".pdf",
		AddedAt:  addedAt,
	}
}

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, MetadataFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Contains(t, store.Path(), filepath.Join(".docqa", "data", MetadataFile))
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.CorpusStore().Save(ctx, testEntry("doc-1", time.Now())))
	require.NoError(t, store.Close())

	// Migrations must not re-run or wipe data.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.CorpusStore().List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// ==================== Corpus Store Tests ====================

func TestCorpusStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	added := time.Date(2024, 3, 15, 10, 30, 0, 123, time.UTC)

	entry := testEntry("doc-1", added)
	require.NoError(t, store.CorpusStore().Save(ctx, entry))

	got, err := store.CorpusStore().Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, entry, *got)
}

func TestCorpusStore_VideoFields(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	entry := domain.CorpusEntry{
		ID:           "vid-1",
		Name:         "報稅教學",
		Type:         domain.DocumentTypeVideo,
		Format:       "youtube",
		Tags:         []string{},
		Path:         "youtube/vid-1.txt",
		AddedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		VideoID:      "dQw4w9WgXcQ",
		VideoURL:     "https://youtu.be/dQw4w9WgXcQ",
		ThumbnailURL: "https://img.youtube.com/vi/dQw4w9WgXcQ/0.jpg",
		Author:       "Finance Channel",
	}
	require.NoError(t, store.CorpusStore().Save(ctx, entry))

	got, err := store.CorpusStore().Get(ctx, "vid-1")
	require.NoError(t, err)
	assert.Equal(t, entry, *got)
}

func TestCorpusStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CorpusStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCorpusStore_ListOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	corpus := store.CorpusStore()
	base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, corpus.Save(ctx, testEntry("b", base.Add(time.Hour))))
	require.NoError(t, corpus.Save(ctx, testEntry("a", base)))
	require.NoError(t, corpus.Save(ctx, testEntry("c", base.Add(time.Hour))))

	entries, err := corpus.List(ctx)
	require.NoError(t, err)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	// Ties on added_at keep insertion order.
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestCorpusStore_SaveReplaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	corpus := store.CorpusStore()
	added := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	entry := testEntry("doc-1", added)
	require.NoError(t, corpus.Save(ctx, entry))

	entry.Category = "保險"
	entry.Tags = nil
	require.NoError(t, corpus.Save(ctx, entry))

	entries, err := corpus.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "保險", entries[0].Category)
	assert.Empty(t, entries[0].Tags)
}

func TestCorpusStore_EmptyList(t *testing.T) {
	store := setupTestStore(t)

	entries, err := store.CorpusStore().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// ==================== Helper Function Tests ====================

func TestFloat32Conversion(t *testing.T) {
	original := []float32{0.1, -2.5, 3.14159, 0}

	restored := bytesToFloat32Slice(float32SliceToBytes(original))
	assert.Equal(t, original, restored)

	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
