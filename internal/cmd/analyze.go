// Package cmd implements the analyze command for the sift CLI.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/hargabyte/sift/internal/config"
	"github.com/hargabyte/sift/internal/engine"
	"github.com/hargabyte/sift/internal/store"
	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [root...]",
	Short: "Analyze a corpus for redundancy and placeholder patterns",
	Long: `Analyze scans the given corpus roots (or the current directory if none are
given), fingerprints every matching file, and persists the results.

The analysis:
  1. Enumerates files under each root, applying include/exclude filters
  2. Hashes content and records size, line count, and modification time
  3. Extracts structural features (functions, classes, imports, markers)
  4. Mines content for placeholder candidates (paths, versions, addresses)
  5. Groups files by normalized name and scores every pair within a group
  6. Classifies pairs as DUPLICATE, VARIANT, or INDEPENDENT

Interrupting with Ctrl-C cancels the run; partial results are kept and the
run is recorded as CANCELLED.

Examples:
  sift analyze                   # Analyze current directory
  sift analyze ./scripts ./jobs  # Analyze multiple roots
  sift analyze --workers 4       # Bound the worker pool`,
	RunE: runAnalyze,
}

var analyzeWorkers int

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Worker pool size (default: CPU count)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	for i, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolving root %s: %w", root, err)
		}
		roots[i] = abs
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if analyzeWorkers > 0 {
		cfg.Scan.Workers = analyzeWorkers
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	siftDir, err := config.EnsureConfigDir(cwd)
	if err != nil {
		return fmt.Errorf("ensure .sift directory: %w", err)
	}

	storeDB, err := store.Open(siftDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer storeDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(cfg, storeDB)
	res, runErr := eng.Run(ctx, roots)
	if res == nil {
		return runErr
	}

	if !quiet {
		printRunSummary(res)
	}

	if runErr != nil && res.Status != store.RunStatusCancelled {
		return runErr
	}
	return nil
}

// loadConfig loads from --config if given, otherwise walks up from the
// current directory. A missing config file falls back to defaults.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func printRunSummary(res *engine.Result) {
	header := color.New(color.Bold)
	good := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed)

	header.Printf("Run %s\n", res.RunID)

	switch res.Status {
	case store.RunStatusCompleted:
		good.Printf("  status:      %s\n", res.Status)
	case store.RunStatusCancelled:
		warn.Printf("  status:      %s\n", res.Status)
	default:
		bad.Printf("  status:      %s\n", res.Status)
	}

	fmt.Printf("  scanned:     %d files (%d skipped)\n", res.FilesScanned, res.FilesSkipped)
	fmt.Printf("  groups:      %d\n", res.Groups)
	fmt.Printf("  duplicates:  %d\n", res.Duplicates)
	fmt.Printf("  variants:    %d\n", res.Variants)
	fmt.Printf("  candidates:  %d\n", res.CandidatesFound)
	fmt.Printf("  elapsed:     %s\n", res.Elapsed.Round(time.Millisecond))

	if len(res.Warnings) > 0 {
		warn.Printf("  warnings:    %d\n", len(res.Warnings))
		if verbose {
			for _, w := range res.Warnings {
				if w.Path != "" {
					fmt.Printf("    %s: %s\n", w.Path, w.Reason)
				} else {
					fmt.Printf("    %s\n", w.Reason)
				}
			}
		}
	}
}
