package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hargabyte/sift/internal/config"
	"github.com/hargabyte/sift/internal/store"
	"github.com/spf13/cobra"
)

// duplicatesCmd represents the duplicates command
var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List duplicate and variant file pairs",
	Long: `List similarity edges persisted by previous analyze runs.

Each edge is a scored pair of files from the same identity group. DUPLICATE
pairs recommend removing the secondary (older) file; VARIANT pairs are
flagged for manual review.

Examples:
  sift duplicates                       # All edges, highest score first
  sift duplicates --verdict DUPLICATE   # Only duplicate pairs
  sift duplicates --limit 5             # Top five edges
  sift duplicates --format json         # Machine-readable output`,
	RunE: runDuplicates,
}

var (
	duplicatesVerdict string
	duplicatesLimit   int
)

func init() {
	rootCmd.AddCommand(duplicatesCmd)
	duplicatesCmd.Flags().StringVar(&duplicatesVerdict, "verdict", "", "Filter by verdict (DUPLICATE|VARIANT|INDEPENDENT)")
	duplicatesCmd.Flags().IntVar(&duplicatesLimit, "limit", 0, "Maximum edges to show (0 = all)")
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	storeDB, err := openExistingStore()
	if err != nil {
		return err
	}
	defer storeDB.Close()

	verdict := strings.ToUpper(duplicatesVerdict)
	edges, err := storeDB.ListEdges(verdict, duplicatesLimit)
	if err != nil {
		return fmt.Errorf("list edges: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(edges)
	}

	if len(edges) == 0 {
		fmt.Println("No similarity edges found. Run 'sift analyze' first.")
		return nil
	}

	dup := color.New(color.FgRed)
	variant := color.New(color.FgYellow)

	for _, e := range edges {
		switch e.Verdict {
		case "DUPLICATE":
			dup.Printf("%-10s", e.Verdict)
		case "VARIANT":
			variant.Printf("%-10s", e.Verdict)
		default:
			fmt.Printf("%-10s", e.Verdict)
		}
		fmt.Printf(" %.3f  %s\n", e.Score, e.PrimaryPath)
		fmt.Printf("                  %s  (%s, group %s)\n", e.SecondaryPath, e.RecommendedAction, e.GroupKey)
	}
	fmt.Printf("\n%d edge(s)\n", len(edges))
	return nil
}

// openExistingStore opens the store under the nearest .sift directory,
// failing with a hint when the project is not initialized.
func openExistingStore() (*store.Store, error) {
	siftDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("sift not initialized: run 'sift init && sift analyze' first")
	}
	storeDB, err := store.Open(siftDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return storeDB, nil
}
