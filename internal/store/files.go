package store

import (
	"fmt"
	"time"

	"github.com/hargabyte/sift/internal/feature"
	"github.com/hargabyte/sift/internal/fingerprint"
)

// UpsertFile records a fingerprinted file keyed by its content hash.
// Re-applying the same record refreshes path, mtime, and last-seen run
// without creating a new row; identical content under a new path keeps
// a single row.
func (s *Store) UpsertFile(rec *fingerprint.FileRecord, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO files (hash, path, size, lines, mtime, last_seen_run)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			path = excluded.path,
			mtime = excluded.mtime,
			last_seen_run = excluded.last_seen_run`,
		rec.ContentHash, rec.Path, rec.ByteSize, rec.LineCount,
		rec.ModifiedAt.UTC().Format(time.RFC3339), runID,
	)
	if err != nil {
		return &StoreError{Stage: "upsert file", Err: fmt.Errorf("%s: %w", rec.Path, err)}
	}
	return nil
}

// UpsertFeatures records a file's extracted feature set. Features are
// unique per (hash, kind, value); features of a hash already stored are
// skipped, so re-applying an unchanged set adds no rows.
func (s *Store) UpsertFeatures(fileHash string, fs *feature.FeatureSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return &StoreError{Stage: "upsert features", Err: err}
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO features (file_hash, kind, value)
		VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return &StoreError{Stage: "upsert features", Err: err}
	}
	defer stmt.Close()

	kinds := []struct {
		kind string
		set  feature.Set
	}{
		{feature.KindFunction, fs.Functions},
		{feature.KindClass, fs.Classes},
		{feature.KindImport, fs.Imports},
		{feature.KindMarker, fs.Markers},
	}
	for _, k := range kinds {
		for value := range k.set {
			if _, err := stmt.Exec(fileHash, k.kind, value); err != nil {
				tx.Rollback()
				return &StoreError{Stage: "upsert features", Err: fmt.Errorf("%s %s: %w", k.kind, value, err)}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Stage: "upsert features", Err: err}
	}
	return nil
}

// StoredFile is a persisted file row.
type StoredFile struct {
	Hash       string
	Path       string
	ByteSize   int64
	LineCount  int64
	ModifiedAt time.Time
}

// GetFile retrieves a file row by content hash. Returns sql.ErrNoRows
// when the hash is unknown.
func (s *Store) GetFile(hash string) (*StoredFile, error) {
	var f StoredFile
	var mtime string
	err := s.db.QueryRow(`
		SELECT hash, path, size, lines, mtime FROM files WHERE hash = ?`,
		hash).Scan(&f.Hash, &f.Path, &f.ByteSize, &f.LineCount, &mtime)
	if err != nil {
		return nil, err
	}
	f.ModifiedAt, _ = time.Parse(time.RFC3339, mtime)
	return &f, nil
}

// GetFeatures retrieves the stored feature values for a hash and kind,
// ordered by value.
func (s *Store) GetFeatures(fileHash, kind string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT value FROM features
		WHERE file_hash = ? AND kind = ? ORDER BY value`,
		fileHash, kind)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}
	return values, nil
}
