// Package store owns the single connection to the planner database file.
//
// Every read and write goes through Store.Do, which holds a mutex for the
// duration of one operation. SQLite does not support concurrent writers on one
// handle, so callers never touch the connection outside Do.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"planner/internal/db"
	"planner/internal/migrate"
)

// ErrUnavailable is returned once the store can no longer be used safely.
var ErrUnavailable = errors.New("store unavailable")

type Store struct {
	mu       sync.Mutex
	sqlDB    *sql.DB
	conn     *sql.Conn
	path     string
	version  int
	poisoned bool
}

// Open prepares the data directory, applies the schema and pins one connection.
func Open(ctx context.Context, cfg db.Config) (*Store, error) {
	sqlDB, err := db.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := migrate.Migrate(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	version, err := migrate.Version(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Store{sqlDB: sqlDB, conn: conn, path: db.Path(cfg), version: version}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SchemaVersion is the schema version in effect after Open.
func (s *Store) SchemaVersion() int {
	return s.version
}

// Do runs fn with exclusive use of the connection. A panic inside fn poisons
// the store: the call and every later call fail with ErrUnavailable.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) (err error) {
	if s == nil {
		return ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned || s.conn == nil {
		return ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			err = fmt.Errorf("%w: operation panicked: %v", ErrUnavailable, r)
		}
	}()
	return fn(ctx, s.conn)
}

// Close releases the connection. Later calls to Do return ErrUnavailable.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
		s.conn = nil
	}
	if s.sqlDB != nil {
		errs = append(errs, s.sqlDB.Close())
		s.sqlDB = nil
	}
	return errors.Join(errs...)
}
