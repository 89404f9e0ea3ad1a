package tools

import (
	"context"

	"github.com/HendryAvila/ctp-mcp/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetContextTool handles the ctp-get-context MCP tool.
// It renders a whole project directory as a single prompt.
type GetContextTool struct {
	dispatcher *Dispatcher
}

// NewGetContextTool creates a GetContextTool backed by the dispatcher.
func NewGetContextTool(d *Dispatcher) *GetContextTool {
	return &GetContextTool{dispatcher: d}
}

// Definition returns the MCP tool definition for registration.
func (t *GetContextTool) Definition() mcp.Tool {
	return definitionOf(ToolGetContext)
}

// Handle processes the ctp-get-context tool call.
func (t *GetContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.dispatcher.handle(ctx, ToolGetContext, req)
}

// getContext returns the engine's prompt for the project verbatim.
func (d *Dispatcher) getContext(ctx context.Context, r ContextRequest) (string, error) {
	e := d.newEngine(engine.Options{
		Root:             r.RootPath,
		IncludePatterns:  r.IncludePatterns,
		ExcludePatterns:  r.ExcludePatterns,
		RespectGitignore: r.RespectGitignore,
		Compress:         r.Compress,
		Format:           r.OutputFormat,
		TreeDepth:        r.TreeDepth,
	})
	return e.Generate(ctx)
}
