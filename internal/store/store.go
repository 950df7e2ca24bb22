// Package store provides SQLite-backed persistence for analysis results.
// The database lives in .sift/sift.db. All writes are idempotent upserts
// keyed by content hash, candidate id, or the canonical edge pair, so
// re-running an analysis on an unchanged corpus leaves row counts
// untouched.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// DBFileName is the database file name inside the .sift directory.
const DBFileName = "sift.db"

// Store manages the .sift/sift.db SQLite database. Producers may be
// concurrent; all writes funnel through a single mutex so run-scoped
// upserts never interleave.
type Store struct {
	db     *sql.DB
	dbPath string

	mu sync.Mutex
}

// Open opens or creates the store database in the specified .sift
// directory. It auto-creates the directory and initializes the schema
// if the database is new.
func Open(siftDir string) (*Store, error) {
	if err := os.MkdirAll(siftDir, 0755); err != nil {
		return nil, fmt.Errorf("create .sift directory: %w", err)
	}

	dbPath := filepath.Join(siftDir, DBFileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// OpenDefault opens the store in the .sift directory under the current
// working directory.
func OpenDefault() (*Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return Open(filepath.Join(cwd, ".sift"))
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// DB returns the underlying database connection for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Stats summarizes the store contents.
type Stats struct {
	FileCount      int64
	FeatureCount   int64
	EdgeCount      int64
	CandidateCount int64
	RunCount       int64
}

// GetStats returns row counts for every analysis table.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats
	counts := []struct {
		table string
		dest  *int64
	}{
		{"files", &stats.FileCount},
		{"features", &stats.FeatureCount},
		{"similarity_edges", &stats.EdgeCount},
		{"placeholder_candidates", &stats.CandidateCount},
		{"runs", &stats.RunCount},
	}
	for _, c := range counts {
		err := s.db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dest)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return &stats, nil
}
