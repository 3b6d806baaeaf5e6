// Package sqlite persists vector index bundles as SQLite databases.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A bundle is a directory holding a single
// index.db file with three tables:
//
//   - index_meta: provider, model, dimensions and entry count (one row)
//   - entries: chunk text, position data and the vector as a little-endian float32 blob
//   - schema_migrations: applied schema versions
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Atomicity
//
// Save writes a temporary database next to index.db and renames it into place,
// so readers only ever see a complete bundle. Load validates the entry count
// and vector sizes against the meta row and rejects incomplete bundles.
package sqlite
