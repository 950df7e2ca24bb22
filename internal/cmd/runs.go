package cmd

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hargabyte/sift/internal/store"
	"github.com/spf13/cobra"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show analysis run history",
	Long: `Show the history of analyze runs, newest first. With a run id, show
that run's details including every warning it recorded (unreadable files,
skipped symlinks, bad rules).

Examples:
  sift runs                # Recent runs
  sift runs --limit 3      # Last three runs
  sift runs <run-id>       # One run with its warnings`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

var runsLimit int

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Maximum runs to show (0 = all)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	storeDB, err := openExistingStore()
	if err != nil {
		return err
	}
	defer storeDB.Close()

	if len(args) == 1 {
		return showRun(storeDB, args[0])
	}

	runs, err := storeDB.ListRuns(runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded. Run 'sift analyze' first.")
		return nil
	}

	for _, r := range runs {
		printStatus(r.Status)
		fmt.Printf(" %s  %s  %d files, %d edges, %d candidates\n",
			r.RunID, r.StartedAt.Local().Format(time.RFC3339),
			r.FilesScanned, r.EdgesFound, r.CandidatesFound)
	}
	return nil
}

func showRun(storeDB *store.Store, runID string) error {
	r, err := storeDB.GetRun(runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("run not found: %s", runID)
		}
		return fmt.Errorf("get run: %w", err)
	}
	warnings, err := storeDB.GetRunWarnings(runID)
	if err != nil {
		return fmt.Errorf("get run warnings: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"run":      r,
			"warnings": warnings,
		})
	}

	fmt.Printf("Run %s\n", r.RunID)
	printStatus(r.Status)
	fmt.Println()
	fmt.Printf("  roots:       %s\n", strings.Join(r.Roots, ", "))
	fmt.Printf("  started:     %s\n", r.StartedAt.Local().Format(time.RFC3339))
	if !r.CompletedAt.IsZero() {
		fmt.Printf("  completed:   %s\n", r.CompletedAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  scanned:     %d files (%d skipped)\n", r.FilesScanned, r.FilesSkipped)
	fmt.Printf("  edges:       %d\n", r.EdgesFound)
	fmt.Printf("  candidates:  %d\n", r.CandidatesFound)
	if r.FailedStage != "" {
		fmt.Printf("  failed at:   %s\n", r.FailedStage)
	}

	if len(warnings) > 0 {
		fmt.Printf("\n%d warning(s):\n", len(warnings))
		for _, w := range warnings {
			if w.Path != "" {
				fmt.Printf("  %s: %s\n", w.Path, w.Reason)
			} else {
				fmt.Printf("  %s\n", w.Reason)
			}
		}
	}
	return nil
}

func printStatus(status string) {
	switch status {
	case store.RunStatusCompleted:
		color.New(color.FgGreen).Printf("%-10s", status)
	case store.RunStatusRunning:
		color.New(color.FgCyan).Printf("%-10s", status)
	case store.RunStatusCancelled:
		color.New(color.FgYellow).Printf("%-10s", status)
	default:
		color.New(color.FgRed).Printf("%-10s", status)
	}
}
