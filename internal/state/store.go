// Package state persists build records so unchanged exports can be skipped.
package state

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// BuildRecord captures one completed version conversion.
type BuildRecord struct {
	Version    string
	ExportHash string
	BuildID    string
	Pages      int
	Failures   int
	BuiltAt    time.Time
}

// Store is a SQLite-backed build-record store.
// Use ":memory:" for an ephemeral database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (and initializes) a store at the given path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single connection: sqlite has one writer, and pooled connections would
	// each see their own ":memory:" database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		version TEXT PRIMARY KEY,
		export_hash TEXT NOT NULL,
		build_id TEXT NOT NULL,
		pages INTEGER NOT NULL,
		failures INTEGER NOT NULL,
		built_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ShouldBuild reports whether a version needs converting: true when no record
// exists or the export hash changed since the recorded build.
func (s *Store) ShouldBuild(ctx context.Context, version, exportHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recorded string
	err := s.db.QueryRowContext(ctx,
		"SELECT export_hash FROM builds WHERE version = ?", version,
	).Scan(&recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("query build record: %w", err)
	}
	return recorded != exportHash, nil
}

// RecordBuild upserts the record for a version.
func (s *Store) RecordBuild(ctx context.Context, rec BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (version, export_hash, build_id, pages, failures, built_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(version) DO UPDATE SET
		   export_hash = excluded.export_hash,
		   build_id = excluded.build_id,
		   pages = excluded.pages,
		   failures = excluded.failures,
		   built_at = excluded.built_at`,
		rec.Version, rec.ExportHash, rec.BuildID, rec.Pages, rec.Failures, rec.BuiltAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}
	return nil
}

// LastBuild returns the record for a version, or nil when none exists.
func (s *Store) LastBuild(ctx context.Context, version string) (*BuildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec BuildRecord
	var builtAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT version, export_hash, build_id, pages, failures, built_at FROM builds WHERE version = ?",
		version,
	).Scan(&rec.Version, &rec.ExportHash, &rec.BuildID, &rec.Pages, &rec.Failures, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query build record: %w", err)
	}
	rec.BuiltAt = time.Unix(builtAt, 0)
	return &rec, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// HashFile returns the hex sha256 of a file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
