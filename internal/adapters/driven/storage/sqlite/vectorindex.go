package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/cosine"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Vector index location relative to the data directory.
const (
	VectorDir  = "vectorstore"
	VectorFile = "index.db"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a driven.VectorIndex persisted in SQLite. Records are
// scanned into memory on first search and ranked by cosine similarity.
// The cache is reloaded when another process rebuilds the index.
type VectorIndex struct {
	db   *sql.DB
	path string

	mu       sync.RWMutex
	loaded   bool
	loadedAt time.Time
	records  []domain.VectorRecord
	vectors  [][]float32
}

// NewVectorIndex opens the vector index under dataDir/vectorstore.
// If dataDir is empty, defaults to ~/.docqa/data.
func NewVectorIndex(dataDir string) (*VectorIndex, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docqa", "data")
	}

	dbPath := filepath.Join(dataDir, VectorDir, VectorFile)
	db, err := openDB(dbPath, migrations.Vector)
	if err != nil {
		return nil, err
	}
	return &VectorIndex{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (v *VectorIndex) Path() string {
	return v.path
}

// Rebuild replaces every record in one transaction.
func (v *VectorIndex) Rebuild(ctx context.Context, records []domain.VectorRecord, info domain.IndexInfo) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, r := range records {
		if info.Dimensions > 0 && len(r.Embedding) != info.Dimensions {
			return fmt.Errorf("%w: record %s", domain.ErrDimensionMismatch, r.ChunkID)
		}
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM vector_records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_records (position, chunk_id, document_id, text, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %s: %w", r.ChunkID, err)
		}
		_, err = stmt.ExecContext(ctx, i, r.ChunkID, r.DocumentID, r.Text,
			float32SliceToBytes(r.Embedding), string(meta))
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", r.ChunkID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO index_info (id, records, dimensions, model, backend, built_at)
		VALUES (1, ?, ?, ?, ?, ?)
	`, info.Records, info.Dimensions, info.Model, info.Backend, info.BuiltAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving index info: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rebuild: %w", err)
	}

	v.records = append([]domain.VectorRecord(nil), records...)
	v.vectors = make([][]float32, len(records))
	for i, r := range records {
		v.vectors[i] = r.Embedding
	}
	v.loaded = true
	v.loadedAt = info.BuiltAt
	return nil
}

// Search returns up to k records by descending cosine similarity.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	info, err := v.Info(ctx)
	if err != nil {
		return nil, err
	}
	if info.Dimensions > 0 && len(query) != info.Dimensions {
		return nil, domain.ErrDimensionMismatch
	}

	if err := v.load(ctx, info.BuiltAt); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

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
func (v *VectorIndex) Info(ctx context.Context) (*domain.IndexInfo, error) {
	var info domain.IndexInfo
	var builtAt int64
	err := v.db.QueryRowContext(ctx,
		"SELECT records, dimensions, model, backend, built_at FROM index_info WHERE id = 1",
	).Scan(&info.Records, &info.Dimensions, &info.Model, &info.Backend, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIndexNotReady
	}
	if err != nil {
		return nil, fmt.Errorf("reading index info: %w", err)
	}
	info.BuiltAt = time.Unix(0, builtAt).UTC()
	return &info, nil
}

// Close closes the database connection.
func (v *VectorIndex) Close() error {
	return v.db.Close()
}

// load reads all records into memory unless the cache already holds the
// build stamped builtAt.
func (v *VectorIndex) load(ctx context.Context, builtAt time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loaded && v.loadedAt.Equal(builtAt) {
		return nil
	}

	rows, err := v.db.QueryContext(ctx,
		"SELECT chunk_id, document_id, text, embedding, metadata FROM vector_records ORDER BY position")
	if err != nil {
		return fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.VectorRecord
	var vectors [][]float32
	for rows.Next() {
		var r domain.VectorRecord
		var embedding []byte
		var meta string
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Text, &embedding, &meta); err != nil {
			return fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &r.Metadata); err != nil {
			return fmt.Errorf("unmarshaling metadata for %s: %w", r.ChunkID, err)
		}
		r.Embedding = bytesToFloat32Slice(embedding)
		records = append(records, r)
		vectors = append(vectors, r.Embedding)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	v.records = records
	v.vectors = vectors
	v.loaded = true
	v.loadedAt = builtAt
	return nil
}
