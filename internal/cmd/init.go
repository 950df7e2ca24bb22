// Package cmd implements the init command for the sift CLI.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hargabyte/sift/internal/config"
	"github.com/hargabyte/sift/internal/store"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .sift directory, config, and database",
	Long: `Initialize the .sift directory in the current directory with a default
config.yaml and an empty sift.db database.

The config file carries the scan filters, similarity weights, classification
thresholds, and the feature and placeholder rule tables. Edit it to tune the
analysis for your corpus.

Examples:
  sift init          # Initialize in current directory
  sift init --force  # Rewrite config.yaml with defaults`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Rewrite config.yaml even if it exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	siftDir := filepath.Join(cwd, config.ConfigDirName)
	cfgPath := filepath.Join(siftDir, config.ConfigFileName)

	_, err = os.Stat(cfgPath)
	if err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(cwd, siftDir)
			fmt.Printf("Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(cfgPath); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	written, err := config.SaveDefault(cwd)
	if err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	// Open the store once so the schema exists before the first run.
	storeDB, err := store.Open(siftDir)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer storeDB.Close()

	relPath, _ := filepath.Rel(cwd, written)
	fmt.Printf("Initialized sift at %s\n", relPath)

	return nil
}
