package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// MetadataFile is the corpus registry database file name.
const MetadataFile = "metadata.db"

// Store is the SQLite-backed corpus registry.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docqa/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docqa", "data")
	}

	dbPath := filepath.Join(dataDir, MetadataFile)
	db, err := openDB(dbPath, migrations.Metadata)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:   db,
		path: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CorpusStore returns a CorpusStore interface backed by this store.
func (s *Store) CorpusStore() driven.CorpusStore {
	return &corpusStore{store: s}
}

// openDB opens the database at dbPath, creating its directory, and applies
// the migrations in the named migrations directory.
func openDB(dbPath, migrationDir string) (*sql.DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db, migrations.FS, migrationDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// migrate runs all pending migrations found in dir.
func migrate(db *sql.DB, fsys fs.FS, dir string) error {
	// Ensure schema_migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_corpus.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Corpus Store ====================

// corpusStore implements driven.CorpusStore.
type corpusStore struct {
	store *Store
}

var _ driven.CorpusStore = (*corpusStore)(nil)

const corpusColumns = `id, name, type, format, category, tags, path, added_at,
	video_id, video_url, thumbnail_url, author`

// Save creates or replaces an entry. Replacing keeps the row position, so
// List order is unchanged.
func (s *corpusStore) Save(ctx context.Context, entry domain.CorpusEntry) error {
	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO corpus_entries (`+corpusColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			format = excluded.format,
			category = excluded.category,
			tags = excluded.tags,
			path = excluded.path,
			added_at = excluded.added_at,
			video_id = excluded.video_id,
			video_url = excluded.video_url,
			thumbnail_url = excluded.thumbnail_url,
			author = excluded.author
	`,
		entry.ID, entry.Name, string(entry.Type), entry.Format, entry.Category,
		string(tagsJSON), entry.Path, entry.AddedAt.UnixNano(),
		entry.VideoID, entry.VideoURL, entry.ThumbnailURL, entry.Author,
	)
	if err != nil {
		return fmt.Errorf("saving corpus entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID.
func (s *corpusStore) Get(ctx context.Context, id string) (*domain.CorpusEntry, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+corpusColumns+` FROM corpus_entries WHERE id = ?`, id)

	entry, err := scanCorpusEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns every entry ordered by ingestion time, then insertion order.
func (s *corpusStore) List(ctx context.Context) ([]domain.CorpusEntry, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+corpusColumns+` FROM corpus_entries ORDER BY added_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying corpus entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CorpusEntry
	for rows.Next() {
		entry, err := scanCorpusEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanCorpusEntry scans a single corpus entry row.
func scanCorpusEntry(row scanner) (*domain.CorpusEntry, error) {
	var entry domain.CorpusEntry
	var entryType, tagsJSON string
	var addedAt int64

	err := row.Scan(
		&entry.ID, &entry.Name, &entryType, &entry.Format, &entry.Category,
		&tagsJSON, &entry.Path, &addedAt,
		&entry.VideoID, &entry.VideoURL, &entry.ThumbnailURL, &entry.Author,
	)
	if err != nil {
		return nil, err
	}

	entry.Type = domain.DocumentType(entryType)
	entry.AddedAt = time.Unix(0, addedAt).UTC()
	if err := json.Unmarshal([]byte(tagsJSON), &entry.Tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	return &entry, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
