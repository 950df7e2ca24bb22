package store

import (
	"fmt"

	"github.com/hargabyte/sift/internal/classify"
	"github.com/hargabyte/sift/internal/grouping"
)

// StoredEdge is a persisted similarity edge with its verdict.
type StoredEdge struct {
	HashA             string
	HashB             string
	Score             float64
	Verdict           string
	RecommendedAction string
	PrimaryHash       string
	PrimaryPath       string
	SecondaryPath     string
	GroupKey          string
}

// UpsertEdge records a scored pair with its verdict. The pair is stored
// under a canonical hash ordering (hash_a < hash_b) so re-analysis of
// the same files replaces the edge instead of adding a mirror row.
func (s *Store) UpsertEdge(e grouping.Edge, verdict classify.Verdict, action classify.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hashA, hashB := e.PrimaryHash, e.SecondaryHash
	if hashB < hashA {
		hashA, hashB = hashB, hashA
	}

	_, err := s.db.Exec(`
		INSERT INTO similarity_edges
			(hash_a, hash_b, score, verdict, recommended_action,
			 primary_hash, primary_path, secondary_path, group_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash_a, hash_b) DO UPDATE SET
			score = excluded.score,
			verdict = excluded.verdict,
			recommended_action = excluded.recommended_action,
			primary_hash = excluded.primary_hash,
			primary_path = excluded.primary_path,
			secondary_path = excluded.secondary_path,
			group_key = excluded.group_key`,
		hashA, hashB, e.Score, string(verdict), string(action),
		e.PrimaryHash, e.PrimaryPath, e.SecondaryPath, e.GroupKey,
	)
	if err != nil {
		return &StoreError{Stage: "upsert edge", Err: fmt.Errorf("%s/%s: %w", e.PrimaryPath, e.SecondaryPath, err)}
	}
	return nil
}

// ListEdges retrieves stored edges ordered by descending score. An
// empty verdict matches all verdicts.
func (s *Store) ListEdges(verdict string, limit int) ([]StoredEdge, error) {
	query := `
		SELECT hash_a, hash_b, score, verdict, recommended_action,
		       primary_hash, primary_path, secondary_path, group_key
		FROM similarity_edges`
	args := []any{}
	if verdict != "" {
		query += " WHERE verdict = ?"
		args = append(args, verdict)
	}
	query += " ORDER BY score DESC, primary_path"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var edges []StoredEdge
	for rows.Next() {
		var e StoredEdge
		err := rows.Scan(&e.HashA, &e.HashB, &e.Score, &e.Verdict, &e.RecommendedAction,
			&e.PrimaryHash, &e.PrimaryPath, &e.SecondaryPath, &e.GroupKey)
		if err != nil {
			return nil, fmt.Errorf("scan edge row: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edge rows: %w", err)
	}
	return edges, nil
}
