package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestCorpusService_RegisterAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewCorpusService(memory.NewCorpusStore())

	require.NoError(t, svc.Register(ctx, domain.CorpusEntry{ID: "b", Name: "second.txt", Type: domain.DocumentTypeFile, AddedAt: testNow}))
	require.NoError(t, svc.Register(ctx, domain.CorpusEntry{ID: "a", Name: "video", Type: domain.DocumentTypeVideo, AddedAt: testNow}))

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "a", entries[1].ID)

	got, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "video", got.Name)
}

func TestCorpusService_RegisterRejectsInvalidEntries(t *testing.T) {
	ctx := context.Background()
	svc := NewCorpusService(memory.NewCorpusStore())

	assert.ErrorIs(t, svc.Register(ctx, domain.CorpusEntry{Name: "no-id", Type: domain.DocumentTypeFile}), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Register(ctx, domain.CorpusEntry{ID: "x", Type: "spreadsheet"}), domain.ErrInvalidInput)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCorpusService_Get(t *testing.T) {
	ctx := context.Background()
	svc := NewCorpusService(memory.NewCorpusStore())

	_, err := svc.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCorpusService_RemoveIsNotImplemented(t *testing.T) {
	ctx := context.Background()
	svc := NewCorpusService(memory.NewCorpusStore())
	require.NoError(t, svc.Register(ctx, domain.CorpusEntry{ID: "a", Type: domain.DocumentTypeFile}))

	assert.ErrorIs(t, svc.Remove(ctx, "a"), domain.ErrNotImplemented)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCorpusService_NilStore(t *testing.T) {
	svc := NewCorpusService(nil)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
