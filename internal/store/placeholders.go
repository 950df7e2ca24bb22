package store

import (
	"fmt"

	"github.com/hargabyte/sift/internal/placeholder"
)

// StoredCandidate is a persisted placeholder candidate with its
// cross-file usage count.
type StoredCandidate struct {
	ID         string
	RuleName   string
	Category   string
	Literal    string
	Confidence float64
	UsageCount int64
}

// UpsertCandidate records a placeholder candidate. The candidate row is
// keyed by its stable id; the usage count increments only the first
// time a given file hash sights the literal, so re-running over an
// unchanged corpus changes nothing.
func (s *Store) UpsertCandidate(c placeholder.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return &StoreError{Stage: "upsert candidate", Err: err}
	}

	_, err = tx.Exec(`
		INSERT INTO placeholder_candidates (id, rule_name, category, literal, confidence, usage_count)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET confidence = excluded.confidence`,
		c.ID, c.RuleName, c.Category, c.Literal, c.Confidence,
	)
	if err != nil {
		tx.Rollback()
		return &StoreError{Stage: "upsert candidate", Err: fmt.Errorf("%s: %w", c.ID, err)}
	}

	res, err := tx.Exec(`
		INSERT OR IGNORE INTO candidate_sightings (candidate_id, file_hash)
		VALUES (?, ?)`,
		c.ID, c.SourceFileHash,
	)
	if err != nil {
		tx.Rollback()
		return &StoreError{Stage: "upsert candidate", Err: fmt.Errorf("sighting %s: %w", c.ID, err)}
	}

	if n, _ := res.RowsAffected(); n > 0 {
		_, err = tx.Exec(`
			UPDATE placeholder_candidates SET usage_count = usage_count + 1
			WHERE id = ?`, c.ID)
		if err != nil {
			tx.Rollback()
			return &StoreError{Stage: "upsert candidate", Err: fmt.Errorf("count %s: %w", c.ID, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Stage: "upsert candidate", Err: err}
	}
	return nil
}

// ListCandidates retrieves candidates at or above a minimum confidence,
// ordered by usage count then confidence.
func (s *Store) ListCandidates(minConfidence float64, limit int) ([]StoredCandidate, error) {
	query := `
		SELECT id, rule_name, category, literal, confidence, usage_count
		FROM placeholder_candidates
		WHERE confidence >= ?
		ORDER BY usage_count DESC, confidence DESC, id`
	args := []any{minConfidence}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []StoredCandidate
	for rows.Next() {
		var c StoredCandidate
		err := rows.Scan(&c.ID, &c.RuleName, &c.Category, &c.Literal, &c.Confidence, &c.UsageCount)
		if err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate rows: %w", err)
	}
	return candidates, nil
}
