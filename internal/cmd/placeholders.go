package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// placeholdersCmd represents the placeholders command
var placeholdersCmd = &cobra.Command{
	Use:   "placeholders",
	Short: "List placeholder candidates mined from the corpus",
	Long: `List literal values that recur across the corpus and could be replaced
with template placeholders: database paths, environments, versions, IP
addresses, author strings.

Candidates are ranked by how many distinct files contain the literal, then
by rule confidence.

Examples:
  sift placeholders               # Candidates at confidence >= 0.5
  sift placeholders --min 0.8     # High-confidence candidates only
  sift placeholders --limit 10    # Top ten`,
	RunE: runPlaceholders,
}

var (
	placeholdersMin   float64
	placeholdersLimit int
)

func init() {
	rootCmd.AddCommand(placeholdersCmd)
	placeholdersCmd.Flags().Float64Var(&placeholdersMin, "min", 0.5, "Minimum rule confidence")
	placeholdersCmd.Flags().IntVar(&placeholdersLimit, "limit", 0, "Maximum candidates to show (0 = all)")
}

func runPlaceholders(cmd *cobra.Command, args []string) error {
	storeDB, err := openExistingStore()
	if err != nil {
		return err
	}
	defer storeDB.Close()

	candidates, err := storeDB.ListCandidates(placeholdersMin, placeholdersLimit)
	if err != nil {
		return fmt.Errorf("list candidates: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	if len(candidates) == 0 {
		fmt.Println("No placeholder candidates found. Run 'sift analyze' first.")
		return nil
	}

	fmt.Printf("%-16s %-6s %-5s %s\n", "CATEGORY", "FILES", "CONF", "LITERAL")
	for _, c := range candidates {
		fmt.Printf("%-16s %-6d %-5.2f %s\n", c.Category, c.UsageCount, c.Confidence, c.Literal)
	}
	fmt.Printf("\n%d candidate(s)\n", len(candidates))
	return nil
}
