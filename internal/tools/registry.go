// Package tools implements the MCP tools that expose the prompt engine.
//
// Each tool is declared once as a toolSpec: name, description and an
// ordered field table. The field table produces the published input schema
// (ListTools) and drives argument validation (Validate), so the schema a
// client sees is exactly what the server accepts.
//
// Design principles:
// - SRP: each tool file = one tool (definition + operation)
// - DIP: the dispatcher depends on an Engine interface built per call
// - Errors are typed (*Failure) and mapped to JSON-RPC codes at the edge
package tools

import (
	"github.com/HendryAvila/ctp-mcp/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolSpec is the single source of truth for one tool.
type toolSpec struct {
	name        string
	description string
	fields      []field
	bind        func(values) Request
}

var outputFormats = func() []string {
	out := make([]string, 0, len(engine.Formats))
	for _, f := range engine.Formats {
		out = append(out, string(f))
	}
	return out
}()

// Shared field declarations.
var (
	includePatternsField = field{
		name:        "include_patterns",
		kind:        kindStringList,
		description: "Glob patterns for files to include.",
		glob:        true,
	}
	excludePatternsField = field{
		name:        "exclude_patterns",
		kind:        kindStringList,
		description: "Glob patterns for files to exclude.",
		glob:        true,
	}
	respectGitignoreField = field{
		name:        "respect_gitignore",
		kind:        kindBool,
		description: "Whether to respect .gitignore rules.",
		def:         true,
	}
	outputFormatField = field{
		name:        "output_format",
		kind:        kindString,
		description: "Output format ('default', 'markdown', 'cxml').",
		def:         string(engine.FormatDefault),
		enum:        outputFormats,
	}
)

var toolSpecs = []toolSpec{
	{
		name: ToolGetContext,
		description: "Generates a comprehensive, context-rich prompt from an entire codebase directory, " +
			"applying filters and formatting options.",
		fields: []field{
			{name: "root_path", kind: kindPath, required: true, description: "Root directory path of the project."},
			includePatternsField,
			excludePatternsField,
			respectGitignoreField,
			{name: "compress", kind: kindBool, def: false, description: "Use smart code compression to summarize files."},
			outputFormatField,
			{
				name:        "tree_depth",
				kind:        kindInt,
				def:         engine.DefaultTreeDepth,
				min:         intPtr(0),
				description: "Maximum depth for the project structure tree.",
			},
		},
		bind: bindContextRequest,
	},
	{
		name: ToolAnalyseProject,
		description: "Provides a detailed statistical analysis of a codebase, including token counts, " +
			"line counts, and breakdowns by file type.",
		fields: []field{
			{name: "root_path", kind: kindPath, required: true, description: "Root directory path of the project to analyse."},
			includePatternsField,
			excludePatternsField,
			respectGitignoreField,
			{
				name:        "top_n",
				kind:        kindInt,
				def:         10,
				min:         intPtr(1),
				description: "Number of items to show in top lists.",
			},
		},
		bind: bindAnalyseRequest,
	},
	{
		name:        ToolGetFiles,
		description: "Retrieves the content of a specific list of files from the project, formatted into a prompt.",
		fields: []field{
			{name: "root_path", kind: kindPath, required: true, description: "Root directory path of the project."},
			{
				name:        "paths",
				kind:        kindStringList,
				required:    true,
				minItems:    1,
				description: "A list of specific file paths to include, relative to the root path.",
			},
			outputFormatField,
		},
		bind: bindGetFilesRequest,
	},
}

// registeredTools is derived once from toolSpecs and never mutated.
var registeredTools = buildTools()

func buildTools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(toolSpecs))
	for _, spec := range toolSpecs {
		out = append(out, spec.definition())
	}
	return out
}

func (s toolSpec) definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(s.description),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	}
	for _, f := range s.fields {
		opts = append(opts, f.toolOption())
	}
	return mcp.NewTool(s.name, opts...)
}

// ListTools returns the tool definitions in registration order. The result
// is identical on every call; callers must not modify the schemas.
func ListTools() []mcp.Tool {
	out := make([]mcp.Tool, len(registeredTools))
	copy(out, registeredTools)
	return out
}

// lookupTool finds the spec for name.
func lookupTool(name string) (toolSpec, bool) {
	for _, spec := range toolSpecs {
		if spec.name == name {
			return spec, true
		}
	}
	return toolSpec{}, false
}

// definitionOf returns the registered definition for a known tool name.
func definitionOf(name string) mcp.Tool {
	for _, t := range registeredTools {
		if t.Name == name {
			return t
		}
	}
	panic("tools: no definition registered for " + name)
}
