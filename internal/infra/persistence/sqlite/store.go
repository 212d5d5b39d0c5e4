// Package sqlite provides a SQLite-backed sample store that keeps the
// in-memory semantics while snapshotting the full state to disk after every
// successful write.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"ancientdna/internal/infra/persistence/memory"
	"ancientdna/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.SampleStore = (*Store)(nil)

const samplesBucket = "samples"

// Store persists the in-memory state to a single-table SQLite database as a
// JSON payload. The snapshot keeps insertion order, so a restarted process
// observes the same List order as the one that wrote it.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database at path and hydrates the in-memory
// state from any existing snapshot. An empty path defaults to ancientdna.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "ancientdna.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM state WHERE bucket = ?`, samplesBucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot.Samples); err != nil {
		return fmt.Errorf("decode %s: %w", samplesBucket, err)
	}
	s.ImportState(snapshot)
	return nil
}

// Upsert writes through the in-memory store and snapshots to disk.
func (s *Store) Upsert(ctx context.Context, sample domain.Sample) error {
	if err := s.Store.Upsert(ctx, sample); err != nil {
		return err
	}
	return s.persist()
}

// UpsertBatch writes through the in-memory store and snapshots to disk once.
func (s *Store) UpsertBatch(ctx context.Context, samples []domain.Sample) (int, error) {
	n, err := s.Store.UpsertBatch(ctx, samples)
	if err != nil {
		return n, err
	}
	return n, s.persist()
}

func (s *Store) persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	payload, err := json.Marshal(snapshot.Samples)
	if err != nil {
		return fmt.Errorf("encode %s: %w", samplesBucket, err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO state(bucket, payload) VALUES(?, ?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		samplesBucket, payload,
	); err != nil {
		return fmt.Errorf("upsert %s: %w", samplesBucket, err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
