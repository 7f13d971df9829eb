package milvus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Field names of a generation collection.
const (
	fieldChunkID    = "chunk_id"
	fieldDocumentID = "document_id"
	fieldText       = "text"
	fieldMetadata   = "metadata"
	fieldEmbedding  = "embedding"

	maxIDLength   = 128
	maxTextLength = 65535
)

// outputFields are returned with every search hit.
var outputFields = []string{fieldChunkID, fieldDocumentID, fieldText, fieldMetadata}

// backend is the subset of Milvus operations the index needs.
type backend interface {
	CreateCollection(ctx context.Context, name string, dimensions int) error
	Insert(ctx context.Context, name string, records []domain.VectorRecord) error
	Prepare(ctx context.Context, name string) error
	Search(ctx context.Context, name string, query []float32, k int) ([]domain.RetrievedChunk, error)
	Drop(ctx context.Context, name string) error
	Close(ctx context.Context) error
}

// sdkBackend implements backend with the Milvus Go SDK.
type sdkBackend struct {
	client *milvusclient.Client
}

// dial connects to the server described by cfg.
func dial(ctx context.Context, cfg Config) (*sdkBackend, error) {
	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to milvus at %s: %w", cfg.Address, err)
	}
	return &sdkBackend{client: c}, nil
}

func (b *sdkBackend) CreateCollection(ctx context.Context, name string, dimensions int) error {
	schema := entity.NewSchema().
		WithName(name).
		WithDescription("docqa vector index generation").
		WithAutoID(false).
		WithField(entity.NewField().
			WithName(fieldChunkID).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxIDLength).
			WithIsPrimaryKey(true)).
		WithField(entity.NewField().
			WithName(fieldDocumentID).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxIDLength)).
		WithField(entity.NewField().
			WithName(fieldText).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxTextLength)).
		WithField(entity.NewField().
			WithName(fieldMetadata).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxTextLength)).
		WithField(entity.NewField().
			WithName(fieldEmbedding).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dimensions)))

	if err := b.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(name, schema)); err != nil {
		return fmt.Errorf("creating collection %s: %w", name, err)
	}
	return nil
}

func (b *sdkBackend) Insert(ctx context.Context, name string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	n := len(records)
	chunkIDs := make([]string, n)
	docIDs := make([]string, n)
	texts := make([]string, n)
	metas := make([]string, n)
	vectors := make([][]float32, n)
	for i, r := range records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %s: %w", r.ChunkID, err)
		}
		chunkIDs[i] = r.ChunkID
		docIDs[i] = r.DocumentID
		texts[i] = r.Text
		metas[i] = string(meta)
		vectors[i] = r.Embedding
	}

	_, err := b.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(name,
		column.NewColumnVarChar(fieldChunkID, chunkIDs),
		column.NewColumnVarChar(fieldDocumentID, docIDs),
		column.NewColumnVarChar(fieldText, texts),
		column.NewColumnVarChar(fieldMetadata, metas),
		column.NewColumnFloatVector(fieldEmbedding, len(vectors[0]), vectors),
	))
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", name, err)
	}
	return nil
}

// Prepare flushes the collection, builds the vector index and loads it.
func (b *sdkBackend) Prepare(ctx context.Context, name string) error {
	flushTask, err := b.client.Flush(ctx, milvusclient.NewFlushOption(name))
	if err != nil {
		return fmt.Errorf("flushing %s: %w", name, err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return fmt.Errorf("waiting for flush of %s: %w", name, err)
	}

	idx := index.NewAutoIndex(entity.COSINE)
	indexTask, err := b.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(name, fieldEmbedding, idx))
	if err != nil {
		return fmt.Errorf("creating index on %s: %w", name, err)
	}
	if err := indexTask.Await(ctx); err != nil {
		return fmt.Errorf("waiting for index on %s: %w", name, err)
	}

	loadTask, err := b.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(name))
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("waiting for load of %s: %w", name, err)
	}
	return nil
}

func (b *sdkBackend) Search(ctx context.Context, name string, query []float32, k int) ([]domain.RetrievedChunk, error) {
	results, err := b.client.Search(ctx, milvusclient.NewSearchOption(
		name,
		k,
		[]entity.Vector{entity.FloatVector(query)},
	).WithANNSField(fieldEmbedding).
		WithOutputFields(outputFields...))
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", name, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	rs := results[0]
	hits := make([]domain.RetrievedChunk, rs.ResultCount)
	for i := range hits {
		hits[i].Score = float64(rs.Scores[i])
	}
	for _, field := range rs.Fields {
		col, ok := field.(*column.ColumnVarChar)
		if !ok {
			continue
		}
		data := col.Data()
		for i := range hits {
			if err := setField(&hits[i], col.Name(), data[i]); err != nil {
				return nil, err
			}
		}
	}
	return hits, nil
}

func (b *sdkBackend) Drop(ctx context.Context, name string) error {
	if err := b.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(name)); err != nil {
		return fmt.Errorf("dropping %s: %w", name, err)
	}
	return nil
}

func (b *sdkBackend) Close(ctx context.Context) error {
	return b.client.Close(ctx)
}

// setField copies one output field into a hit.
func setField(hit *domain.RetrievedChunk, name, value string) error {
	switch name {
	case fieldChunkID:
		hit.ChunkID = value
	case fieldDocumentID:
		hit.DocumentID = value
	case fieldText:
		hit.Text = value
	case fieldMetadata:
		if err := json.Unmarshal([]byte(value), &hit.Metadata); err != nil {
			return fmt.Errorf("decoding metadata of %s: %w", hit.ChunkID, err)
		}
	}
	return nil
}
