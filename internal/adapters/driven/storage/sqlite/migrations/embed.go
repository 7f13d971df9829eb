// Package migrations embeds SQL migration files for the SQLite stores.
package migrations

import "embed"

// Directories inside FS, one per database.
const (
	Metadata = "metadata"
	Vector   = "vector"
)

// FS contains all SQL migration files embedded at compile time.
//
//go:embed metadata/*.sql vector/*.sql
var FS embed.FS
