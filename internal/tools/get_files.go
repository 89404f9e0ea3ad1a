package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/HendryAvila/ctp-mcp/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetFilesTool handles the ctp-get-files MCP tool.
// Only the listed files are read; no directory walk happens.
type GetFilesTool struct {
	dispatcher *Dispatcher
}

// NewGetFilesTool creates a GetFilesTool backed by the dispatcher.
func NewGetFilesTool(d *Dispatcher) *GetFilesTool {
	return &GetFilesTool{dispatcher: d}
}

// Definition returns the MCP tool definition for registration.
func (t *GetFilesTool) Definition() mcp.Tool {
	return definitionOf(ToolGetFiles)
}

// Handle processes the ctp-get-files tool call.
func (t *GetFilesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.dispatcher.handle(ctx, ToolGetFiles, req)
}

// getFiles resolves each requested path against the root and renders
// exactly that file set.
func (d *Dispatcher) getFiles(ctx context.Context, r GetFilesRequest) (string, error) {
	root, err := filepath.Abs(r.RootPath)
	if err != nil {
		return "", fmt.Errorf("resolving root path %s: %w", r.RootPath, err)
	}
	explicit := make([]string, 0, len(r.Paths))
	for _, p := range r.Paths {
		explicit = append(explicit, filepath.Join(root, p))
	}

	e := d.newEngine(engine.Options{
		Root:          r.RootPath,
		Format:        r.OutputFormat,
		TreeDepth:     -1,
		ExplicitFiles: explicit,
	})
	return e.Generate(ctx)
}
