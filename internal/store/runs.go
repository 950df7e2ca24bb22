package store

import (
	"fmt"
	"strings"
	"time"
)

// Run statuses. A run is RUNNING from BeginRun until it is sealed by
// one of CompleteRun, FailRun, or CancelRun.
const (
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
	RunStatusCancelled = "CANCELLED"
)

// Run is a persisted analysis run record.
type Run struct {
	RunID           string
	StartedAt       time.Time
	CompletedAt     time.Time
	Status          string
	Roots           []string
	FilesScanned    int64
	FilesSkipped    int64
	EdgesFound      int64
	CandidatesFound int64
	FailedStage     string
}

// RunTotals carries the counters sealed into a finished run.
type RunTotals struct {
	FilesScanned    int64
	FilesSkipped    int64
	EdgesFound      int64
	CandidatesFound int64
}

// BeginRun creates a RUNNING run record.
func (s *Store) BeginRun(runID string, roots []string, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO runs (run_id, started_at, status, roots)
		VALUES (?, ?, ?, ?)`,
		runID, startedAt.UTC().Format(time.RFC3339), RunStatusRunning,
		strings.Join(roots, string(filepathListSeparator)),
	)
	if err != nil {
		return &StoreError{Stage: "begin run", Err: fmt.Errorf("%s: %w", runID, err)}
	}
	return nil
}

// CompleteRun seals a run as COMPLETED with its final totals.
func (s *Store) CompleteRun(runID string, totals RunTotals) error {
	return s.sealRun(runID, RunStatusCompleted, totals, "")
}

// FailRun seals a run as FAILED, recording the stage that errored.
// Already-applied upserts for the run are retained: they are idempotent
// and harmless to reapply on the next run.
func (s *Store) FailRun(runID string, totals RunTotals, stage string) error {
	return s.sealRun(runID, RunStatusFailed, totals, stage)
}

// CancelRun seals a run as CANCELLED, keeping whatever partial results
// were persisted before the cancellation.
func (s *Store) CancelRun(runID string, totals RunTotals) error {
	return s.sealRun(runID, RunStatusCancelled, totals, "")
}

func (s *Store) sealRun(runID, status string, totals RunTotals, failedStage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE runs SET
			completed_at = ?,
			status = ?,
			files_scanned = ?,
			files_skipped = ?,
			edges_found = ?,
			candidates_found = ?,
			failed_stage = ?
		WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339), status,
		totals.FilesScanned, totals.FilesSkipped,
		totals.EdgesFound, totals.CandidatesFound,
		failedStage, runID,
	)
	if err != nil {
		return &StoreError{Stage: "seal run", Err: fmt.Errorf("%s: %w", runID, err)}
	}
	return nil
}

// AddRunWarning records a non-fatal problem (unreadable file, skipped
// symlink) observed during a run.
func (s *Store) AddRunWarning(runID, path, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO run_warnings (run_id, path, reason) VALUES (?, ?, ?)`,
		runID, path, reason,
	)
	if err != nil {
		return &StoreError{Stage: "add warning", Err: fmt.Errorf("%s: %w", path, err)}
	}
	return nil
}

// GetRun retrieves a run by id. Returns sql.ErrNoRows for unknown runs.
func (s *Store) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, started_at, completed_at, status, roots,
		       files_scanned, files_skipped, edges_found, candidates_found, failed_stage
		FROM runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// ListRuns retrieves the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, started_at, completed_at, status, roots,
		       files_scanned, files_skipped, edges_found, candidates_found, failed_stage
		FROM runs ORDER BY started_at DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// RunWarning is a persisted warning row.
type RunWarning struct {
	RunID  string
	Path   string
	Reason string
}

// GetRunWarnings retrieves the warnings recorded during a run.
func (s *Store) GetRunWarnings(runID string) ([]RunWarning, error) {
	rows, err := s.db.Query(`
		SELECT run_id, path, reason FROM run_warnings
		WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run warnings: %w", err)
	}
	defer rows.Close()

	var warnings []RunWarning
	for rows.Next() {
		var w RunWarning
		if err := rows.Scan(&w.RunID, &w.Path, &w.Reason); err != nil {
			return nil, fmt.Errorf("scan warning row: %w", err)
		}
		warnings = append(warnings, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warning rows: %w", err)
	}
	return warnings, nil
}

// filepathListSeparator joins corpus roots into a single column. Roots
// never contain newlines, which makes the join reversible.
const filepathListSeparator = '\n'

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var startedAt, roots string
	var completedAt *string
	err := row.Scan(&r.RunID, &startedAt, &completedAt, &r.Status, &roots,
		&r.FilesScanned, &r.FilesSkipped, &r.EdgesFound, &r.CandidatesFound, &r.FailedStage)
	if err != nil {
		return nil, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if completedAt != nil {
		r.CompletedAt, _ = time.Parse(time.RFC3339, *completedAt)
	}
	if roots != "" {
		r.Roots = strings.Split(roots, string(filepathListSeparator))
	}
	return &r, nil
}
