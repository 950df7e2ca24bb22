// Package mcp provides an MCP (Model Context Protocol) server for sift.
// This allows AI agents to query analysis results through MCP tools
// instead of CLI commands.
package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hargabyte/sift/internal/config"
	"github.com/hargabyte/sift/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with sift-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	store        *store.Store
	siftDir      string
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// DefaultTools is the default set of tools to expose
var DefaultTools = []string{"sift_duplicates", "sift_placeholders", "sift_runs", "sift_stats"}

// AllTools lists all available tools
var AllTools = []string{"sift_duplicates", "sift_placeholders", "sift_runs", "sift_stats"}

// New creates a new MCP server for sift
func New(cfg Config) (*Server, error) {
	siftDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("sift not initialized: run 'sift init && sift analyze' first")
	}

	storeDB, err := store.Open(siftDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"sift",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		store:        storeDB,
		siftDir:      siftDir,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			storeDB.Close()
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "sift_duplicates":
		return s.registerDuplicatesTool()
	case "sift_placeholders":
		return s.registerPlaceholdersTool()
	case "sift_runs":
		return s.registerRunsTool()
	case "sift_stats":
		return s.registerStatsTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "sift serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the server and its resources
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// ListTools returns the list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"sift_duplicates": {
		Name:        "sift_duplicates",
		Description: "List similarity edges between analyzed files. Returns scored pairs with verdicts and recommended actions.",
		Parameters: []ParameterSchema{
			{Name: "verdict", Type: "string", Description: "Filter by verdict: DUPLICATE, VARIANT, INDEPENDENT (default: all)"},
			{Name: "limit", Type: "number", Description: "Maximum results (default: 20)"},
		},
	},
	"sift_placeholders": {
		Name:        "sift_placeholders",
		Description: "List placeholder candidates: literal values seen across files that could be parameterized.",
		Parameters: []ParameterSchema{
			{Name: "min_confidence", Type: "number", Description: "Minimum confidence threshold (default: 0.5)"},
			{Name: "limit", Type: "number", Description: "Maximum results (default: 20)"},
		},
	},
	"sift_runs": {
		Name:        "sift_runs",
		Description: "List analysis runs with their status and totals, or show one run with its warnings.",
		Parameters: []ParameterSchema{
			{Name: "run_id", Type: "string", Description: "Show a single run including its warnings"},
			{Name: "limit", Type: "number", Description: "Maximum runs to list (default: 10)"},
		},
	},
	"sift_stats": {
		Name:        "sift_stats",
		Description: "Row counts for every analysis table: files, features, edges, candidates, runs.",
		Parameters:  []ParameterSchema{},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'sift call --list' to see available tools)", name)
	}

	switch name {
	case "sift_duplicates":
		verdict, _ := args["verdict"].(string)
		limit := 20
		if l, ok := args["limit"].(float64); ok {
			limit = int(l)
		}
		return s.executeDuplicates(verdict, limit)

	case "sift_placeholders":
		minConfidence := 0.5
		if c, ok := args["min_confidence"].(float64); ok {
			minConfidence = c
		}
		limit := 20
		if l, ok := args["limit"].(float64); ok {
			limit = int(l)
		}
		return s.executePlaceholders(minConfidence, limit)

	case "sift_runs":
		runID, _ := args["run_id"].(string)
		limit := 10
		if l, ok := args["limit"].(float64); ok {
			limit = int(l)
		}
		return s.executeRuns(runID, limit)

	case "sift_stats":
		return s.executeStats()

	default:
		return "", fmt.Errorf("tool %s has no dispatcher", name)
	}
}

// Tool registration

func (s *Server) registerDuplicatesTool() error {
	tool := mcp.NewTool("sift_duplicates",
		mcp.WithDescription("List similarity edges between analyzed files. Returns scored pairs with verdicts and recommended actions."),
		mcp.WithString("verdict",
			mcp.Description("Filter by verdict: DUPLICATE, VARIANT, INDEPENDENT (default: all)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 20)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleDuplicates)
	return nil
}

func (s *Server) registerPlaceholdersTool() error {
	tool := mcp.NewTool("sift_placeholders",
		mcp.WithDescription("List placeholder candidates: literal values seen across files that could be parameterized."),
		mcp.WithNumber("min_confidence",
			mcp.Description("Minimum confidence threshold (default: 0.5)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 20)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handlePlaceholders)
	return nil
}

func (s *Server) registerRunsTool() error {
	tool := mcp.NewTool("sift_runs",
		mcp.WithDescription("List analysis runs with their status and totals, or show one run with its warnings."),
		mcp.WithString("run_id",
			mcp.Description("Show a single run including its warnings"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum runs to list (default: 10)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleRuns)
	return nil
}

func (s *Server) registerStatsTool() error {
	tool := mcp.NewTool("sift_stats",
		mcp.WithDescription("Row counts for every analysis table: files, features, edges, candidates, runs."),
	)

	s.mcpServer.AddTool(tool, s.handleStats)
	return nil
}

// Tool handlers

func (s *Server) handleDuplicates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	verdict, _ := args["verdict"].(string)
	limit := 20
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	result, err := s.executeDuplicates(verdict, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handlePlaceholders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	minConfidence := 0.5
	if c, ok := args["min_confidence"].(float64); ok {
		minConfidence = c
	}
	limit := 20
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	result, err := s.executePlaceholders(minConfidence, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	runID, _ := args["run_id"].(string)
	limit := 10
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	result, err := s.executeRuns(runID, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.executeStats()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// Tool execution

func (s *Server) executeDuplicates(verdict string, limit int) (string, error) {
	edges, err := s.store.ListEdges(verdict, limit)
	if err != nil {
		return "", fmt.Errorf("failed to list edges: %w", err)
	}

	items := make([]map[string]interface{}, 0, len(edges))
	for _, e := range edges {
		items = append(items, map[string]interface{}{
			"primary":            e.PrimaryPath,
			"secondary":          e.SecondaryPath,
			"score":              e.Score,
			"verdict":            e.Verdict,
			"recommended_action": e.RecommendedAction,
			"group":              e.GroupKey,
		})
	}

	result := map[string]interface{}{
		"count": len(items),
		"edges": items,
	}
	if verdict != "" {
		result["verdict"] = verdict
	}
	return toJSON(result)
}

func (s *Server) executePlaceholders(minConfidence float64, limit int) (string, error) {
	candidates, err := s.store.ListCandidates(minConfidence, limit)
	if err != nil {
		return "", fmt.Errorf("failed to list candidates: %w", err)
	}

	items := make([]map[string]interface{}, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, map[string]interface{}{
			"rule":        c.RuleName,
			"category":    c.Category,
			"literal":     c.Literal,
			"confidence":  c.Confidence,
			"usage_count": c.UsageCount,
		})
	}

	return toJSON(map[string]interface{}{
		"count":          len(items),
		"min_confidence": minConfidence,
		"candidates":     items,
	})
}

func (s *Server) executeRuns(runID string, limit int) (string, error) {
	if runID != "" {
		run, err := s.store.GetRun(runID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", fmt.Errorf("run not found: %s", runID)
			}
			return "", fmt.Errorf("failed to get run: %w", err)
		}
		warnings, err := s.store.GetRunWarnings(runID)
		if err != nil {
			return "", fmt.Errorf("failed to get run warnings: %w", err)
		}

		warnItems := make([]map[string]interface{}, 0, len(warnings))
		for _, w := range warnings {
			warnItems = append(warnItems, map[string]interface{}{
				"path":   w.Path,
				"reason": w.Reason,
			})
		}
		return toJSON(map[string]interface{}{
			"run":      runSummary(*run),
			"warnings": warnItems,
		})
	}

	runs, err := s.store.ListRuns(limit)
	if err != nil {
		return "", fmt.Errorf("failed to list runs: %w", err)
	}

	items := make([]map[string]interface{}, 0, len(runs))
	for _, r := range runs {
		items = append(items, runSummary(r))
	}
	return toJSON(map[string]interface{}{
		"count": len(items),
		"runs":  items,
	})
}

func (s *Server) executeStats() (string, error) {
	stats, err := s.store.GetStats()
	if err != nil {
		return "", fmt.Errorf("failed to get stats: %w", err)
	}

	return toJSON(map[string]interface{}{
		"files":      stats.FileCount,
		"features":   stats.FeatureCount,
		"edges":      stats.EdgeCount,
		"candidates": stats.CandidateCount,
		"runs":       stats.RunCount,
	})
}

func runSummary(r store.Run) map[string]interface{} {
	summary := map[string]interface{}{
		"run_id":           r.RunID,
		"status":           r.Status,
		"started_at":       r.StartedAt.Format(time.RFC3339),
		"roots":            r.Roots,
		"files_scanned":    r.FilesScanned,
		"files_skipped":    r.FilesSkipped,
		"edges_found":      r.EdgesFound,
		"candidates_found": r.CandidatesFound,
	}
	if !r.CompletedAt.IsZero() {
		summary["completed_at"] = r.CompletedAt.Format(time.RFC3339)
	}
	if r.FailedStage != "" {
		summary["failed_stage"] = r.FailedStage
	}
	return summary
}

// toJSON marshals a value to indented JSON.
func toJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}
