// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it builds the engine factory and the
// dispatcher from configuration and injects them into the tools.
// No business logic lives here, only wiring.
package server

import (
	"fmt"
	"log/slog"

	"github.com/HendryAvila/ctp-mcp/internal/config"
	"github.com/HendryAvila/ctp-mcp/internal/prompts"
	"github.com/HendryAvila/ctp-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with the three prompt tools and the
// ctp-explore prompt registered.
// A nil logger discards logs.
func New(cfg *config.Config, logger *slog.Logger) (*server.MCPServer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	dispatcher := NewDispatcher(cfg, logger)

	s := server.NewMCPServer(
		cfg.Name,
		Version,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	contextTool := tools.NewGetContextTool(dispatcher)
	s.AddTool(contextTool.Definition(), contextTool.Handle)

	analyseTool := tools.NewAnalyseProjectTool(dispatcher)
	s.AddTool(analyseTool.Definition(), analyseTool.Handle)

	filesTool := tools.NewGetFilesTool(dispatcher)
	s.AddTool(filesTool.Definition(), filesTool.Handle)

	explorePrompt := prompts.NewExplorePrompt()
	s.AddPrompt(explorePrompt.Definition(), explorePrompt.Handle)

	return s, nil
}

// NewDispatcher builds the dispatcher shared by the tools and the CLI.
func NewDispatcher(cfg *config.Config, logger *slog.Logger) *tools.Dispatcher {
	return tools.NewDispatcher(tools.NewEngineFactory(cfg.EngineOptions()), logger)
}

func serverInstructions() string {
	return `ctp-mcp turns a codebase into a single LLM-ready prompt.

Tools:
- ctp-analyse-project: token, line and file-type statistics for a project.
  Run it first on unfamiliar or large codebases to choose filters.
- ctp-get-context: the whole project (structure tree plus file contents),
  filtered by include/exclude globs and .gitignore, optionally compressed
  to declarations only.
- ctp-get-files: only the listed files, paths relative to root_path.

Output formats: default (plain text), markdown, cxml (XML-like documents).
All tools are read-only. root_path must be a directory the server can read.

Errors:
- Invalid arguments come back as a tool result with isError=true and
  _meta.code = -32602 (invalid params); _meta.kind says which check failed
  (invalid_arguments). Fix the arguments and retry.
- Unknown tool names are JSON-RPC errors with code -32602.
- Engine failures (missing root, unreadable file, path outside the root)
  are JSON-RPC errors with code -32603 and the engine's message.`
}
