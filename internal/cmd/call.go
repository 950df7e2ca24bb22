package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hargabyte/sift/internal/mcp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call MCP tools directly from the CLI",
	Long: `Call any sift tool with structured JSON input/output, without starting
a long-lived MCP server.

Modes:
  sift call --list                          List all tools and parameters
  sift call <tool> '{"key":"value"}'        Call a tool with JSON args
  sift call --pipe                          Read JSON lines from stdin

Tool names accept shorthand: "runs" is equivalent to "sift_runs".

Examples:
  sift call --list
  sift call duplicates '{"verdict":"DUPLICATE"}'
  sift call placeholders '{"min_confidence":0.8}'
  sift call stats '{}'
  echo '{"tool":"sift_runs","args":{"limit":3}}' | sift call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if callList {
		return runCallList()
	}
	if callPipe {
		return runCallPipe()
	}
	if len(args) == 0 {
		return fmt.Errorf("tool name required (run 'sift call --list' to see available tools)")
	}
	return runCallSingle(args)
}

func runCallList() error {
	srv, err := mcp.New(mcp.Config{Tools: mcp.AllTools})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	schemas := srv.GetToolSchemas()

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(schemas)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(schemas)
}

func runCallSingle(args []string) error {
	toolName := normalizeToolName(args[0])

	toolArgs := map[string]interface{}{}
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("invalid JSON args: %w", err)
		}
	}

	srv, err := mcp.New(mcp.Config{Tools: mcp.AllTools})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	result, err := srv.CallTool(toolName, toolArgs)
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}

// pipeRequest is one JSON line in pipe mode.
type pipeRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// pipeResponse is the JSON line written for each request.
type pipeResponse struct {
	Tool   string          `json:"tool"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runCallPipe() error {
	srv, err := mcp.New(mcp.Config{Tools: mcp.AllTools})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	scanner := bufio.NewScanner(os.Stdin)
	enc := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal(line, &req); err != nil {
			enc.Encode(pipeResponse{Error: fmt.Sprintf("invalid request: %v", err)})
			continue
		}

		toolName := normalizeToolName(req.Tool)
		result, err := srv.CallTool(toolName, req.Args)
		if err != nil {
			enc.Encode(pipeResponse{Tool: toolName, Error: err.Error()})
			continue
		}
		enc.Encode(pipeResponse{Tool: toolName, Result: json.RawMessage(result)})
	}
	return scanner.Err()
}
