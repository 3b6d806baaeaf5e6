package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/vernebot/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
	"github.com/custodia-labs/vernebot/internal/logger"
)

// BundleFile is the database file name inside an index bundle directory.
const BundleFile = "index.db"

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore saves and loads index bundles.
type IndexStore struct {
	migrations fs.FS
}

// NewIndexStore creates an index store using the embedded schema.
func NewIndexStore() *IndexStore {
	return &IndexStore{migrations: migrations.FS}
}

// BundlePath returns the database path for the bundle at dir.
func BundlePath(dir string) string {
	return filepath.Join(dir, BundleFile)
}

// Save writes the snapshot to dir/index.db, replacing any previous bundle.
func (s *IndexStore) Save(ctx context.Context, dir string, snapshot domain.IndexSnapshot) (err error) {
	if err := validateSnapshot(snapshot); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.db.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary bundle: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("creating temporary bundle: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
			_ = os.Remove(tmpPath + "-journal")
		}
	}()

	if err := s.write(ctx, tmpPath, snapshot); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, BundlePath(dir)); err != nil {
		return fmt.Errorf("publishing bundle: %w", err)
	}

	logger.Debug("saved %d entries to %s", len(snapshot.Entries), BundlePath(dir))
	return nil
}

func (s *IndexStore) write(ctx context.Context, path string, snapshot domain.IndexSnapshot) error {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrate(ctx, db, s.migrations); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	meta := snapshot.Meta
	if meta.Dimensions == 0 && len(snapshot.Entries) > 0 {
		meta.Dimensions = len(snapshot.Entries[0].Vector)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO index_meta (id, provider, model, dimensions, entry_count, created_at)
		VALUES (1, ?, ?, ?, ?, ?)
	`, meta.Provider, meta.Model, meta.Dimensions, len(snapshot.Entries),
		meta.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (seq, chunk_id, document_id, source, content, position, offset_runes, overlap, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range snapshot.Entries {
		c := e.Chunk
		if _, err := stmt.ExecContext(ctx, i, c.ID, c.DocumentID, c.Source, c.Content,
			c.Position, c.Offset, c.Overlap, float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bundle: %w", err)
	}
	return nil
}

// Load reads the bundle at dir. Any failure wraps domain.ErrIndexUnavailable.
func (s *IndexStore) Load(ctx context.Context, dir string) (domain.IndexSnapshot, error) {
	path := BundlePath(dir)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.IndexSnapshot{}, fmt.Errorf("%w: no index at %s, run ingest first", domain.ErrIndexUnavailable, dir)
		}
		return domain.IndexSnapshot{}, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	if info.IsDir() {
		return domain.IndexSnapshot{}, fmt.Errorf("%w: %s is a directory", domain.ErrIndexUnavailable, path)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return domain.IndexSnapshot{}, fmt.Errorf("%w: opening database: %w", domain.ErrIndexUnavailable, err)
	}
	defer db.Close()

	snapshot, err := read(ctx, db)
	if err != nil {
		return domain.IndexSnapshot{}, fmt.Errorf("%w: %s: %w", domain.ErrIndexUnavailable, path, err)
	}

	logger.Debug("loaded %d entries from %s", len(snapshot.Entries), path)
	return snapshot, nil
}

func read(ctx context.Context, db *sql.DB) (domain.IndexSnapshot, error) {
	var (
		meta      domain.IndexMeta
		count     int
		createdAt string
	)
	row := db.QueryRowContext(ctx, `
		SELECT provider, model, dimensions, entry_count, created_at
		FROM index_meta WHERE id = 1
	`)
	if err := row.Scan(&meta.Provider, &meta.Model, &meta.Dimensions, &count, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IndexSnapshot{}, errors.New("bundle has no meta row")
		}
		return domain.IndexSnapshot{}, fmt.Errorf("reading meta: %w", err)
	}

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return domain.IndexSnapshot{}, fmt.Errorf("parsing created_at: %w", err)
	}
	meta.CreatedAt = created

	rows, err := db.QueryContext(ctx, `
		SELECT chunk_id, document_id, source, content, position, offset_runes, overlap, vector
		FROM entries ORDER BY seq
	`)
	if err != nil {
		return domain.IndexSnapshot{}, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.IndexEntry, 0, count)
	for rows.Next() {
		var (
			c    domain.Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Source, &c.Content,
			&c.Position, &c.Offset, &c.Overlap, &blob); err != nil {
			return domain.IndexSnapshot{}, fmt.Errorf("scanning entry: %w", err)
		}
		if len(blob) != meta.Dimensions*4 {
			return domain.IndexSnapshot{}, fmt.Errorf("entry %d: vector has %d bytes, want %d",
				len(entries), len(blob), meta.Dimensions*4)
		}
		entries = append(entries, domain.IndexEntry{Chunk: c, Vector: bytesToFloat32Slice(blob)})
	}
	if err := rows.Err(); err != nil {
		return domain.IndexSnapshot{}, fmt.Errorf("iterating entries: %w", err)
	}

	if len(entries) != count {
		return domain.IndexSnapshot{}, fmt.Errorf("bundle is incomplete: %d of %d entries", len(entries), count)
	}

	return domain.IndexSnapshot{Meta: meta, Entries: entries}, nil
}

func validateSnapshot(snapshot domain.IndexSnapshot) error {
	dims := snapshot.Meta.Dimensions
	for i, e := range snapshot.Entries {
		if dims == 0 {
			dims = len(e.Vector)
		}
		if len(e.Vector) == 0 || len(e.Vector) != dims {
			return fmt.Errorf("%w: entry %d has %d dimensions, want %d",
				domain.ErrDimensionMismatch, i, len(e.Vector), dims)
		}
	}
	return nil
}

// migrate runs all pending migrations.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
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
		// "001_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
