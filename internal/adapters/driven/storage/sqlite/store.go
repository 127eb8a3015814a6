package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/resume-warehouse/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
)

// DatabaseFile is the warehouse file name inside the data directory.
const DatabaseFile = "warehouse.db"

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is the SQLite-backed warehouse.
type Store struct {
	db    *sql.DB
	path  string
	locks *keyedMutex
	now   func() time.Time
}

var _ driven.WarehouseStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.resume-warehouse/data/warehouse.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".resume-warehouse", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Pragmas in the DSN apply to every pooled connection. Write transactions
	// start with BEGIN IMMEDIATE so concurrent writers queue on busy_timeout
	// instead of failing on lock upgrade.
	dsn := dbPath + "?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:    db,
		path:  dbPath,
		locks: newKeyedMutex(),
		now:   time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
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
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	upFiles, err := migrationFiles(fsys, ".up.sql")
	if err != nil {
		return err
	}

	for _, m := range upFiles {
		if m.version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, m.name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", m.name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", m.name, err)
		}
	}

	return nil
}

// Reset drops every warehouse table and recreates the schema.
func (s *Store) Reset(ctx context.Context) error {
	downFiles, err := migrationFiles(migrations.FS, ".down.sql")
	if err != nil {
		return err
	}

	// Newest first.
	for i := len(downFiles) - 1; i >= 0; i-- {
		content, err := fs.ReadFile(migrations.FS, downFiles[i].name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", downFiles[i].name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", downFiles[i].name, err)
		}
	}

	return s.migrate(migrations.FS)
}

type migrationFile struct {
	name    string
	version int
}

// migrationFiles lists migrations with the given suffix in version order.
func migrationFiles(fsys fs.FS, suffix string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var files []migrationFile
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		// Extract version number (e.g., "001_warehouse.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		files = append(files, migrationFile{name: name, version: version})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// ==================== Helper Functions ====================

// classifyWriteErr maps constraint failures onto domain errors.
func classifyWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return fmt.Errorf("%w: %w", domain.ErrConsistencyViolation, err)
	}
	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: %w", domain.ErrConsistencyViolation, err)
	}
	return err
}

// isQuerySyntaxErr reports whether err is an FTS5 query parse failure.
func isQuerySyntaxErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "fts5: syntax error") ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "unterminated string")
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// jsonList encodes a list column; nil encodes as [].
func jsonList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parseList decodes a list column written by jsonList.
func parseList(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" || raw.String == jsonNull {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
		return nil, fmt.Errorf("unmarshaling list column: %w", err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
