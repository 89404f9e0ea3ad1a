package tools

import (
	"github.com/HendryAvila/ctp-mcp/internal/engine"
)

// Tool names exposed over MCP.
const (
	ToolGetContext     = "ctp-get-context"
	ToolAnalyseProject = "ctp-analyse-project"
	ToolGetFiles       = "ctp-get-files"
)

// Request is a validated, immutable tool request.
type Request interface {
	ToolName() string
}

// ContextRequest asks for the whole project rendered as a prompt.
type ContextRequest struct {
	RootPath         string
	IncludePatterns  []string
	ExcludePatterns  []string
	RespectGitignore bool
	Compress         bool
	OutputFormat     engine.Format
	TreeDepth        int
}

func (ContextRequest) ToolName() string { return ToolGetContext }

// AnalyseRequest asks for project statistics.
type AnalyseRequest struct {
	RootPath         string
	IncludePatterns  []string
	ExcludePatterns  []string
	RespectGitignore bool
	TopN             int
}

func (AnalyseRequest) ToolName() string { return ToolAnalyseProject }

// GetFilesRequest asks for an explicit set of files rendered as a prompt.
type GetFilesRequest struct {
	RootPath     string
	Paths        []string
	OutputFormat engine.Format
}

func (GetFilesRequest) ToolName() string { return ToolGetFiles }

// values holds parsed arguments keyed by field name. Every declared field
// is present after validation; absent optional fields without a default
// hold nil.
type values map[string]any

func (v values) str(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v values) list(name string) []string {
	l, _ := v[name].([]string)
	return l
}

func (v values) boolean(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v values) integer(name string) int {
	n, _ := v[name].(int)
	return n
}

func bindContextRequest(v values) Request {
	return ContextRequest{
		RootPath:         v.str("root_path"),
		IncludePatterns:  v.list("include_patterns"),
		ExcludePatterns:  v.list("exclude_patterns"),
		RespectGitignore: v.boolean("respect_gitignore"),
		Compress:         v.boolean("compress"),
		OutputFormat:     engine.Format(v.str("output_format")),
		TreeDepth:        v.integer("tree_depth"),
	}
}

func bindAnalyseRequest(v values) Request {
	return AnalyseRequest{
		RootPath:         v.str("root_path"),
		IncludePatterns:  v.list("include_patterns"),
		ExcludePatterns:  v.list("exclude_patterns"),
		RespectGitignore: v.boolean("respect_gitignore"),
		TopN:             v.integer("top_n"),
	}
}

func bindGetFilesRequest(v values) Request {
	return GetFilesRequest{
		RootPath:     v.str("root_path"),
		Paths:        v.list("paths"),
		OutputFormat: engine.Format(v.str("output_format")),
	}
}
