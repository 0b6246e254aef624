// Package store persists cards, their review state and review logs in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sky-flux/fsrs45"
	"github.com/sky-flux/fsrs45/internal/store/migrations"
)

const metadataKeyModelVersion = "model_version"

// pragmas are applied by the driver to every new connection.
var pragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// Store manages the SQLite card database.
type Store struct {
	db     *sql.DB
	log    *zap.Logger
	path   string
	clock  func() time.Time
	mu     sync.RWMutex
	closed bool
}

// DefaultPath returns the default database path: ~/.fsrs45/cards.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: get home dir: %w", err)
	}
	return filepath.Join(home, ".fsrs45", "cards.db"), nil
}

// Open opens (or creates) the database at path and applies pending
// migrations. A nil logger disables logging.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	return open(ctx, path, path+"?"+pragmaQuery(), logger)
}

// OpenMemory opens a private in-memory database, for tests and dry runs.
func OpenMemory(ctx context.Context, logger *zap.Logger) (*Store, error) {
	return open(ctx, ":memory:", ":memory:?"+pragmaQuery(), logger)
}

func pragmaQuery() string {
	parts := make([]string, len(pragmas))
	for i, p := range pragmas {
		parts[i] = "_pragma=" + p
	}
	return strings.Join(parts, "&")
}

func open(ctx context.Context, path, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// One connection: SQLite serializes writers anyway, and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:    db,
		log:   logger.With(zap.String("db", path)),
		path:  path,
		clock: time.Now,
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.log.Debug("store opened")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations.FS)
	if err != nil {
		return fmt.Errorf("store: new migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	for _, r := range results {
		s.log.Info("applied migration",
			zap.Int64("version", r.Source.Version),
			zap.Duration("duration", r.Duration))
	}

	var stored string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = ?`, metadataKeyModelVersion).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO metadata (key, value) VALUES (?, ?)`, metadataKeyModelVersion, fsrs45.ModelVersion)
		if err != nil {
			return fmt.Errorf("store: set model version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("store: read model version: %w", err)
	case stored != fsrs45.ModelVersion:
		return fmt.Errorf("%w: database model %q, scheduler model %q",
			ErrUnsupportedVersion, stored, fsrs45.ModelVersion)
	}
	return nil
}

// Path returns the database path, or ":memory:".
func (s *Store) Path() string {
	return s.path
}

// Close closes the database. Further calls return ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// now returns the store clock truncated to milliseconds.
func (s *Store) now() time.Time {
	return time.UnixMilli(s.clock().UnixMilli()).UTC()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
