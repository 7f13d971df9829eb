// Package sqlite provides SQLite-based implementations of the driven storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Two databases live under the data
// directory:
//
//   - metadata.db: the corpus registry (CorpusStore)
//   - vectorstore/index.db: the local vector index (VectorIndex)
//
// # Schema
//
// Each database's schema is managed through versioned migrations stored in
// migrations/<database>/. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the databases are stored under ~/.docqa/data.
//
// # Thread Safety
//
// All operations are thread-safe. The stores rely on database-level locking
// provided by SQLite in WAL mode. A vector rebuild replaces every record in a
// single transaction, so readers see either the old or the new index.
package sqlite
