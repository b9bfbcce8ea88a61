package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultFileName = "samples.db"

	// dsnParams keeps writes durable enough for a moving vehicle losing power:
	// WAL with NORMAL synchronous, and a busy timeout so the single writer
	// never fails fast on a held lock.
	dsnParams = "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
)

// Option configures a Store.
type Option func(*Store)

// WithFileName overrides the database file name inside the data directory.
func WithFileName(name string) Option {
	return func(s *Store) {
		s.fileName = name
	}
}

// Store owns the sample database: the single file under the data directory,
// its schema migrations, and the insert/query/delete surface. Operations open
// the database lazily on first use; after Close the next operation re-opens
// it transparently. A Store is safe for concurrent use within one process.
type Store struct {
	dir      string
	fileName string

	mu sync.Mutex
	db *sql.DB
}

// New creates a Store rooted at dir. The directory is created on first open
// if it does not exist; the database file name is fixed unless overridden
// with WithFileName.
func New(dir string, opts ...Option) *Store {
	s := Store{
		dir:      dir,
		fileName: defaultFileName,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return &s
}

// Path returns the full path of the database file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, s.fileName)
}

// Open eagerly opens and migrates the database. Calling it is optional:
// every operation performs the same initialization on first use. Open is
// idempotent and safe to call concurrently; one caller performs the physical
// open while the others block and share the result.
func (s *Store) Open(ctx context.Context) error {
	_, err := s.database(ctx)
	return err
}

// Close releases the underlying connection and resets the store so a later
// operation starts over with a fresh open. Safe to call multiple times.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	if err != nil {
		return &IOError{Op: "closing database", Err: err}
	}
	return nil
}

// database returns the shared handle, opening and migrating on first use.
// The mutex guarantees at most one open/migrate sequence runs; concurrent
// callers block until it completes and reuse the handle.
func (s *Store) database(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	s.db = db
	return db, nil
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, &IOError{Op: "creating data directory", Err: err}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.Path(), dsnParams))
	if err != nil {
		return nil, &IOError{Op: "opening database", Err: err}
	}

	// Single connection: the store is the sole writer and SQLite serializes
	// against the file anyway.
	db.SetMaxOpenConns(1)

	if err = migrate(ctx, db); err != nil {
		_ = db.Close()

		var tooNew *SchemaTooNewError
		if errors.As(err, &tooNew) {
			return nil, tooNew
		}
		return nil, &IOError{Op: "migrating schema", Err: err}
	}

	return db, nil
}
