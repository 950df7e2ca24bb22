package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents summary",
	Long: `Show row counts for every analysis table in .sift/sift.db.

Examples:
  sift status
  sift status --format json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	storeDB, err := openExistingStore()
	if err != nil {
		return err
	}
	defer storeDB.Close()

	stats, err := storeDB.GetStats()
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Store: %s\n", storeDB.Path())
	fmt.Printf("  files:       %d\n", stats.FileCount)
	fmt.Printf("  features:    %d\n", stats.FeatureCount)
	fmt.Printf("  edges:       %d\n", stats.EdgeCount)
	fmt.Printf("  candidates:  %d\n", stats.CandidateCount)
	fmt.Printf("  runs:        %d\n", stats.RunCount)
	return nil
}
