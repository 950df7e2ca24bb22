package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/hargabyte/sift/internal/mcp"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server over stdio.

This lets AI agents query analysis results through MCP tools instead of
spawning CLI commands.

Available Tools:
  sift_duplicates    Scored file pairs with verdicts
  sift_placeholders  Placeholder candidates
  sift_runs          Run history and warnings
  sift_stats         Table row counts

Examples:
  sift serve --mcp                              # Start with all tools
  sift serve --mcp --tools duplicates,runs      # Expose specific tools
  sift serve --mcp --timeout 30m                # Auto-stop when idle
  sift serve --list-tools                       # Show available tools`,
	RunE: runServe,
}

var (
	serveMCP       bool
	serveTools     string
	serveTimeout   string
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "30m", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		fmt.Println("Available MCP tools:")
		fmt.Println()
		fmt.Println("  sift_duplicates    Scored file pairs with verdicts")
		fmt.Println("  sift_placeholders  Placeholder candidates")
		fmt.Println("  sift_runs          Run history and warnings")
		fmt.Println("  sift_stats         Table row counts")
		return nil
	}

	if !serveMCP {
		return fmt.Errorf("no transport selected: use --mcp for stdio transport")
	}

	var timeout time.Duration
	if serveTimeout != "" && serveTimeout != "0" {
		var err error
		timeout, err = time.ParseDuration(serveTimeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", serveTimeout, err)
		}
	}

	var tools []string
	if serveTools != "" {
		for _, t := range strings.Split(serveTools, ",") {
			tools = append(tools, normalizeToolName(strings.TrimSpace(t)))
		}
	}

	srv, err := mcp.New(mcp.Config{Tools: tools, Timeout: timeout})
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.ServeStdio()
}

// normalizeToolName accepts shorthand: "duplicates" means "sift_duplicates".
func normalizeToolName(name string) string {
	if strings.HasPrefix(name, "sift_") {
		return name
	}
	return "sift_" + name
}
