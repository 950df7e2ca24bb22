package store

// schemaSQL defines the SQLite schema for the analysis database.
// Tables:
//   - files: one row per distinct content hash, with size/line metrics
//   - features: extracted structural features, unique per (hash, kind, value)
//   - similarity_edges: scored pairs with a canonical hash ordering
//   - placeholder_candidates: literals proposed for parameterization
//   - runs: analysis run lifecycle records
//   - run_warnings: non-fatal problems observed during a run
const schemaSQL = `
CREATE TABLE IF NOT EXISTS files (
    hash TEXT PRIMARY KEY,
    path TEXT NOT NULL,
    size INTEGER NOT NULL,
    lines INTEGER NOT NULL,
    mtime TEXT NOT NULL,
    last_seen_run TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS features (
    file_hash TEXT NOT NULL,
    kind TEXT NOT NULL,
    value TEXT NOT NULL,
    UNIQUE(file_hash, kind, value)
);

CREATE TABLE IF NOT EXISTS similarity_edges (
    hash_a TEXT NOT NULL,
    hash_b TEXT NOT NULL,
    score REAL NOT NULL,
    verdict TEXT NOT NULL,
    recommended_action TEXT NOT NULL,
    primary_hash TEXT NOT NULL,
    primary_path TEXT NOT NULL,
    secondary_path TEXT NOT NULL,
    group_key TEXT NOT NULL,
    UNIQUE(hash_a, hash_b)
);

CREATE TABLE IF NOT EXISTS placeholder_candidates (
    id TEXT PRIMARY KEY,
    rule_name TEXT NOT NULL,
    category TEXT NOT NULL,
    literal TEXT NOT NULL,
    confidence REAL NOT NULL,
    usage_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS candidate_sightings (
    candidate_id TEXT NOT NULL,
    file_hash TEXT NOT NULL,
    UNIQUE(candidate_id, file_hash)
);

CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    completed_at TEXT,
    status TEXT NOT NULL,
    roots TEXT NOT NULL,
    files_scanned INTEGER NOT NULL DEFAULT 0,
    files_skipped INTEGER NOT NULL DEFAULT 0,
    edges_found INTEGER NOT NULL DEFAULT 0,
    candidates_found INTEGER NOT NULL DEFAULT 0,
    failed_stage TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS run_warnings (
    run_id TEXT NOT NULL,
    path TEXT NOT NULL,
    reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_features_hash ON features(file_hash);
CREATE INDEX IF NOT EXISTS idx_edges_score ON similarity_edges(score DESC);
CREATE INDEX IF NOT EXISTS idx_edges_verdict ON similarity_edges(verdict);
CREATE INDEX IF NOT EXISTS idx_candidates_usage ON placeholder_candidates(usage_count DESC);
CREATE INDEX IF NOT EXISTS idx_warnings_run ON run_warnings(run_id);
`

// initSchema creates the database tables and indexes if they don't exist.
func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
