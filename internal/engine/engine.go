// Package engine orchestrates a full analysis run: scan, fingerprint,
// feature extraction, placeholder detection, grouping, classification,
// and persistence.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hargabyte/sift/internal/classify"
	"github.com/hargabyte/sift/internal/config"
	"github.com/hargabyte/sift/internal/feature"
	"github.com/hargabyte/sift/internal/fingerprint"
	"github.com/hargabyte/sift/internal/grouping"
	"github.com/hargabyte/sift/internal/placeholder"
	"github.com/hargabyte/sift/internal/scanner"
	"github.com/hargabyte/sift/internal/store"
)

// Warning is a non-fatal problem observed during a run.
type Warning struct {
	Path   string
	Reason string
}

// Result summarizes a finished analysis run.
type Result struct {
	RunID           string
	Status          string
	FilesScanned    int
	FilesSkipped    int
	Duplicates      int
	Variants        int
	EdgesFound      int
	CandidatesFound int
	Groups          int
	Warnings        []Warning
	Elapsed         time.Duration
}

// Engine wires the analysis components against a single store.
type Engine struct {
	cfg        *config.Config
	store      *store.Store
	extractor  *feature.Extractor
	detector   *placeholder.Detector
	normalizer *grouping.KeyNormalizer

	// rule errors found at construction, surfaced on every run
	ruleWarnings []Warning
}

// New builds an engine from validated configuration. Rules that fail to
// compile are skipped and reported as warnings on each run; they never
// abort construction.
func New(cfg *config.Config, st *store.Store) *Engine {
	e := &Engine{
		cfg:        cfg,
		store:      st,
		normalizer: grouping.NewKeyNormalizer(cfg.Similarity.SuffixTokens),
	}

	var errs []error
	e.extractor, errs = feature.NewExtractor(cfg.FeatureRules)
	for _, err := range errs {
		e.ruleWarnings = append(e.ruleWarnings, Warning{Reason: err.Error()})
	}
	e.detector, errs = placeholder.NewDetector(cfg.Placeholders)
	for _, err := range errs {
		e.ruleWarnings = append(e.ruleWarnings, Warning{Reason: err.Error()})
	}
	return e
}

// fileOutput is the per-file analysis product handed across the
// grouping barrier.
type fileOutput struct {
	member     grouping.Member
	candidates []placeholder.Candidate
}

// Run executes a full analysis over the corpus roots. Per-file problems
// (unreadable, timed out) are recorded as warnings and the file is
// skipped; only store failures or cancellation end the run early. The
// sealed run record reflects how the run ended: COMPLETED, FAILED with
// the stage that errored, or CANCELLED.
func (e *Engine) Run(ctx context.Context, roots []string) (*Result, error) {
	started := time.Now()
	runID := uuid.NewString()

	res := &Result{RunID: runID, Warnings: append([]Warning(nil), e.ruleWarnings...)}

	if err := e.store.BeginRun(runID, roots, started); err != nil {
		return nil, err
	}

	err := e.analyze(ctx, runID, roots, res)
	res.Elapsed = time.Since(started)

	totals := store.RunTotals{
		FilesScanned:    int64(res.FilesScanned),
		FilesSkipped:    int64(res.FilesSkipped),
		EdgesFound:      int64(res.EdgesFound),
		CandidatesFound: int64(res.CandidatesFound),
	}

	switch {
	case errors.Is(err, context.Canceled):
		res.Status = store.RunStatusCancelled
		if sealErr := e.store.CancelRun(runID, totals); sealErr != nil {
			return res, sealErr
		}
		return res, err
	case err != nil:
		res.Status = store.RunStatusFailed
		stage := "analysis"
		var storeErr *store.StoreError
		if errors.As(err, &storeErr) {
			stage = storeErr.Stage
		}
		if sealErr := e.store.FailRun(runID, totals, stage); sealErr != nil {
			return res, sealErr
		}
		return res, err
	default:
		res.Status = store.RunStatusCompleted
		if sealErr := e.store.CompleteRun(runID, totals); sealErr != nil {
			return res, sealErr
		}
		return res, nil
	}
}

func (e *Engine) analyze(ctx context.Context, runID string, roots []string, res *Result) error {
	scanRes := scanner.Scan(roots, e.cfg.Scan.IncludeExtensions, e.cfg.Scan.ExcludeSubstrings)
	for _, w := range scanRes.Warnings {
		res.Warnings = append(res.Warnings, Warning{Path: w.Path, Reason: w.Reason})
	}

	outputs, err := e.analyzeFiles(ctx, scanRes.Paths, res)
	if err != nil {
		return err
	}

	// Persist per-file results before grouping so a later failure
	// still leaves fingerprints behind.
	for _, out := range outputs {
		if err := e.store.UpsertFile(out.member.Record, runID); err != nil {
			return err
		}
		if err := e.store.UpsertFeatures(out.member.Record.ContentHash, out.member.Features); err != nil {
			return err
		}
		for _, c := range out.candidates {
			if err := e.store.UpsertCandidate(c); err != nil {
				return err
			}
			res.CandidatesFound++
		}
	}

	for _, w := range res.Warnings {
		if err := e.store.AddRunWarning(runID, w.Path, w.Reason); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// All members are known; grouping acts as the barrier between the
	// parallel per-file phase and pairwise comparison.
	members := make([]grouping.Member, 0, len(outputs))
	for _, out := range outputs {
		members = append(members, out.member)
	}
	groups := grouping.BuildGroups(members, e.normalizer)
	res.Groups = len(groups)

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sim := e.cfg.Similarity
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		edges := grouping.PairEdges(key, groups[key], sim.Weights, sim.ReportingFloor)
		for _, edge := range edges {
			verdict := classify.Classify(edge.Score, sim.DuplicateThreshold, sim.ReviewThreshold)
			action := classify.Recommend(verdict)
			if err := e.store.UpsertEdge(edge, verdict, action); err != nil {
				return err
			}
			res.EdgesFound++
			switch verdict {
			case classify.VerdictDuplicate:
				res.Duplicates++
			case classify.VerdictVariant:
				res.Variants++
			}
		}
	}

	return nil
}

// analyzeFiles fingerprints and feature-extracts every path with a
// bounded worker pool. Unreadable or stalled files are skipped with a
// warning; every scanned path is accounted for either in the outputs or
// the skip count.
func (e *Engine) analyzeFiles(ctx context.Context, paths []string, res *Result) ([]fileOutput, error) {
	workers := e.cfg.Scan.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	fileTimeout := time.Duration(e.cfg.Scan.FileTimeoutSeconds) * time.Second

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	var outputs []fileOutput

	for _, path := range paths {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			out, warn := e.analyzeFile(gctx, path, fileTimeout)

			mu.Lock()
			defer mu.Unlock()
			if warn != nil {
				res.FilesSkipped++
				res.Warnings = append(res.Warnings, *warn)
				return nil
			}
			res.FilesScanned++
			outputs = append(outputs, *out)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// analyzeFile produces the fingerprint, feature set, and placeholder
// candidates for one file. Failures come back as a warning, never an
// error: a bad file must not sink the run.
func (e *Engine) analyzeFile(ctx context.Context, path string, timeout time.Duration) (*fileOutput, *Warning) {
	fctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rec, err := fingerprint.Fingerprint(fctx, path)
	if err != nil {
		return nil, &Warning{Path: path, Reason: fmt.Sprintf("fingerprint: %v", err)}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &Warning{Path: path, Reason: fmt.Sprintf("read: %v", err)}
	}

	return &fileOutput{
		member: grouping.Member{
			Record:   rec,
			Features: e.extractor.Extract(content),
		},
		candidates: e.detector.Detect(content, rec.ContentHash),
	}, nil
}
