package store_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"planner/internal/db"
	"planner/internal/store"
)

func TestOpenCreatesDatabaseFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := store.Open(context.Background(), db.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if s.Path() != filepath.Join(dir, db.DefaultFileName) {
		t.Fatalf("unexpected path %s", s.Path())
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("db file missing: %v", err)
	}
	if s.SchemaVersion() != 1 {
		t.Fatalf("expected schema version 1, got %d", s.SchemaVersion())
	}
}

func TestReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	cfg := db.Config{DataDir: t.TempDir()}
	s, err := store.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	err = s.Do(ctx, func(ctx context.Context, conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, `INSERT INTO clients(id,name,created_at,updated_at) VALUES ('c1','Acme','t','t')`)
		return err
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = store.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	var count int
	err = s.Do(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, `SELECT count(*) FROM clients`).Scan(&count)
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after reopen, got %d", count)
	}
}

func TestOpenFailsOnUnusableDataDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	_, err := store.Open(context.Background(), db.Config{DataDir: filepath.Join(blocker, "data")})
	if err == nil {
		t.Fatalf("expected error for data dir under a regular file")
	}
}

func TestOpenFailsOnCorruptFile(t *testing.T) {
	dir := t.TempDir()
	junk := make([]byte, 4096)
	for i := range junk {
		junk[i] = 0xAB
	}
	if err := os.WriteFile(filepath.Join(dir, db.DefaultFileName), junk, 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}
	if _, err := store.Open(context.Background(), db.Config{DataDir: dir}); err == nil {
		t.Fatalf("expected error for corrupt database file")
	}
}

func TestPanicPoisonsStore(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, db.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	err = s.Do(ctx, func(ctx context.Context, conn *sql.Conn) error {
		panic("boom")
	})
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from panicking op, got %v", err)
	}
	called := false
	err = s.Do(ctx, func(ctx context.Context, conn *sql.Conn) error {
		called = true
		return nil
	})
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable after poison, got %v", err)
	}
	if called {
		t.Fatalf("operation must not run on a poisoned store")
	}
}

func TestDoAfterClose(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, db.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	err = s.Do(ctx, func(ctx context.Context, conn *sql.Conn) error { return nil })
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable after close, got %v", err)
	}
}

func TestOpenWithURIReservedCharsInDataDir(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "notes#1")
	s, err := store.Open(context.Background(), db.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(filepath.Join(dir, db.DefaultFileName)); err != nil {
		t.Fatalf("db file missing under %s: %v", dir, err)
	}
	if _, err := os.Stat(filepath.Join(parent, "notes")); !os.IsNotExist(err) {
		t.Fatalf("database written to truncated path: %v", err)
	}
}
