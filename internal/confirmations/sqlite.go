package confirmations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"deliveryboard/internal/confirmations/migrations"
	"deliveryboard/pkg/contracts/domain"
)

// SQLiteStore keeps confirmations in a single SQLite file.
// Writes are serialized; reads run concurrently.
type SQLiteStore struct {
	db   *sql.DB
	path string

	mu     sync.Mutex
	closed bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("confirmation store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	// WAL lets dashboard reads proceed while a confirmation is written
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.path
}

// LoadAll returns every stored answer keyed by record id
func (s *SQLiteStore) LoadAll(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record_id, arrived FROM confirmations`)
	if err != nil {
		return nil, fmt.Errorf("querying confirmations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		var arrived bool
		if err := rows.Scan(&id, &arrived); err != nil {
			return nil, fmt.Errorf("scanning confirmation: %w", err)
		}
		out[id] = arrived
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating confirmations: %w", err)
	}
	return out, nil
}

// Upsert stores entry, replacing any previous answer for the same record
func (s *SQLiteStore) Upsert(ctx context.Context, entry domain.ConfirmationEntry) error {
	if entry.RecordID == "" {
		return fmt.Errorf("confirmation without record id")
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO confirmations (record_id, kind, arrived, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(record_id) DO UPDATE SET
			kind = excluded.kind,
			arrived = excluded.arrived,
			recorded_at = excluded.recorded_at
	`, entry.RecordID, string(entry.Kind), entry.Arrived, entry.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving confirmation: %w", err)
	}
	return nil
}

// List returns all entries, most recent first
func (s *SQLiteStore) List(ctx context.Context) ([]domain.ConfirmationEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, kind, arrived, recorded_at
		FROM confirmations
		ORDER BY recorded_at DESC, record_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying confirmations: %w", err)
	}
	defer rows.Close()

	var entries []domain.ConfirmationEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.ConfirmationEntry
		var kind string
		var recordedAt sql.NullTime
		if err := rows.Scan(&e.RecordID, &kind, &e.Arrived, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning confirmation: %w", err)
		}
		e.Kind = domain.RecordKind(kind)
		if recordedAt.Valid {
			e.RecordedAt = recordedAt.Time
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating confirmations: %w", err)
	}
	return entries, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// migrate runs all pending migrations
func (s *SQLiteStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
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
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}
