package tools

import (
	"context"

	"github.com/HendryAvila/ctp-mcp/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// AnalyseProjectTool handles the ctp-analyse-project MCP tool.
type AnalyseProjectTool struct {
	dispatcher *Dispatcher
}

// NewAnalyseProjectTool creates an AnalyseProjectTool backed by the dispatcher.
func NewAnalyseProjectTool(d *Dispatcher) *AnalyseProjectTool {
	return &AnalyseProjectTool{dispatcher: d}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyseProjectTool) Definition() mcp.Tool {
	return definitionOf(ToolAnalyseProject)
}

// Handle processes the ctp-analyse-project tool call.
func (t *AnalyseProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.dispatcher.handle(ctx, ToolAnalyseProject, req)
}

// analyseProject runs the engine analysis and formats it as a text report.
func (d *Dispatcher) analyseProject(ctx context.Context, r AnalyseRequest) (string, error) {
	e := d.newEngine(engine.Options{
		Root:             r.RootPath,
		IncludePatterns:  r.IncludePatterns,
		ExcludePatterns:  r.ExcludePatterns,
		RespectGitignore: r.RespectGitignore,
		TreeDepth:        -1,
	})
	analysis, err := e.Analyse(ctx, r.TopN)
	if err != nil {
		return "", err
	}
	return FormatAnalysisReport(analysis), nil
}
