package milvus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

const (
	// PointerFile records the active collection, relative to the data directory.
	PointerFile = "vectorstore/milvus.json"

	collectionPrefix = "docqa_"
	insertBatchSize  = 512
	connectTimeout   = 10 * time.Second
)

// Config holds Milvus connection settings.
type Config struct {
	Address  string
	Username string
	Password string
	Database string
}

// pointer is the on-disk record of the active generation.
type pointer struct {
	Collection string    `json:"collection"`
	Records    int       `json:"records"`
	Dimensions int       `json:"dimensions"`
	Model      string    `json:"model"`
	Backend    string    `json:"backend"`
	BuiltAt    time.Time `json:"built_at"`
}

func (p pointer) info() domain.IndexInfo {
	return domain.IndexInfo{
		Records:    p.Records,
		Dimensions: p.Dimensions,
		Model:      p.Model,
		Backend:    p.Backend,
		BuiltAt:    p.BuiltAt,
	}
}

// Index is a generation-switching vector index on Milvus.
type Index struct {
	backend     backend
	pointerPath string
	newName     func() string

	mu sync.Mutex
}

// NewIndex connects to Milvus and keeps its pointer file under dataDir.
func NewIndex(ctx context.Context, cfg Config, dataDir string) (*Index, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: milvus address is required", domain.ErrInvalidInput)
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	b, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newIndex(b, dataDir), nil
}

func newIndex(b backend, dataDir string) *Index {
	return &Index{
		backend:     b,
		pointerPath: filepath.Join(dataDir, filepath.FromSlash(PointerFile)),
		newName: func() string {
			return collectionPrefix + strings.ToLower(ulid.Make().String())
		},
	}
}

// Rebuild writes records into a new collection and switches to it.
func (x *Index) Rebuild(ctx context.Context, records []domain.VectorRecord, info domain.IndexInfo) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if info.Dimensions <= 0 {
		return fmt.Errorf("%w: index dimensions must be positive", domain.ErrInvalidInput)
	}
	for _, r := range records {
		if len(r.Embedding) != info.Dimensions {
			return fmt.Errorf("%w: record %s", domain.ErrDimensionMismatch, r.ChunkID)
		}
	}

	previous, err := x.readPointer()
	if err != nil && !errors.Is(err, domain.ErrIndexNotReady) {
		return err
	}

	name := x.newName()
	if err := x.build(ctx, name, records, info.Dimensions); err != nil {
		x.drop(name)
		return err
	}

	next := pointer{
		Collection: name,
		Records:    info.Records,
		Dimensions: info.Dimensions,
		Model:      info.Model,
		Backend:    info.Backend,
		BuiltAt:    info.BuiltAt,
	}
	if err := x.writePointer(next); err != nil {
		x.drop(name)
		return err
	}

	if previous != nil {
		x.drop(previous.Collection)
	}
	logger.Info("milvus: switched to collection %s (%d records)", name, len(records))
	return nil
}

func (x *Index) build(ctx context.Context, name string, records []domain.VectorRecord, dimensions int) error {
	if err := x.backend.CreateCollection(ctx, name, dimensions); err != nil {
		return err
	}
	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))
		if err := x.backend.Insert(ctx, name, records[start:end]); err != nil {
			return err
		}
	}
	return x.backend.Prepare(ctx, name)
}

// drop removes a collection, logging failures. It runs on a fresh context
// so cleanup still happens after the caller's context is cancelled.
func (x *Index) drop(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := x.backend.Drop(ctx, name); err != nil {
		logger.Warn("milvus: %v", err)
	}
}

// Search queries the active collection.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	p, err := x.readPointer()
	if err != nil {
		return nil, err
	}
	if len(query) != p.Dimensions {
		return nil, domain.ErrDimensionMismatch
	}
	if k <= 0 {
		return nil, nil
	}
	return x.backend.Search(ctx, p.Collection, query, k)
}

// Info describes the active collection.
func (x *Index) Info(_ context.Context) (*domain.IndexInfo, error) {
	p, err := x.readPointer()
	if err != nil {
		return nil, err
	}
	info := p.info()
	return &info, nil
}

// Close disconnects from Milvus.
func (x *Index) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return x.backend.Close(ctx)
}

func (x *Index) readPointer() (*pointer, error) {
	data, err := os.ReadFile(x.pointerPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrIndexNotReady
	}
	if err != nil {
		return nil, fmt.Errorf("reading milvus pointer: %w", err)
	}
	var p pointer
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding milvus pointer: %w", err)
	}
	if p.Collection == "" {
		return nil, domain.ErrIndexNotReady
	}
	return &p, nil
}

// writePointer replaces the pointer file atomically.
func (x *Index) writePointer(p pointer) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding milvus pointer: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(x.pointerPath), 0700); err != nil {
		return fmt.Errorf("creating pointer directory: %w", err)
	}
	tmp := x.pointerPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing milvus pointer: %w", err)
	}
	if err := os.Rename(tmp, x.pointerPath); err != nil {
		return fmt.Errorf("switching milvus pointer: %w", err)
	}
	return nil
}
