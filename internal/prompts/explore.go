// Package prompts implements MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/HendryAvila/ctp-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
)

// ExplorePromptName is the name clients list and invoke.
const ExplorePromptName = "ctp-explore"

// ExplorePrompt handles the ctp-explore MCP prompt.
// It guides the AI through sizing a codebase before pulling it into context.
type ExplorePrompt struct{}

// NewExplorePrompt creates an ExplorePrompt.
func NewExplorePrompt() *ExplorePrompt {
	return &ExplorePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ExplorePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt(ExplorePromptName,
		mcp.WithPromptDescription(
			"Explore a codebase: analyse its size first, then load the "+
				"relevant part of it into context as a single prompt.",
		),
		mcp.WithArgument("root_path",
			mcp.ArgumentDescription("Root directory of the project to explore"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("focus",
			mcp.ArgumentDescription("Optional glob patterns (comma-separated) to concentrate on, e.g. 'internal/**,*.go'"),
		),
	)
}

// Handle processes the ctp-explore prompt request.
func (p *ExplorePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	root := strings.TrimSpace(req.Params.Arguments["root_path"])
	if root == "" {
		return nil, fmt.Errorf("root_path is required")
	}
	focus := focusPatterns(req.Params.Arguments["focus"])

	var b strings.Builder
	fmt.Fprintf(&b, "I want to understand the codebase at %q.\n\n", root)
	b.WriteString("Please:\n")
	fmt.Fprintf(&b, "1. Run `%s` with root_path=%q", tools.ToolAnalyseProject, root)
	if focus != "" {
		fmt.Fprintf(&b, " and include_patterns=%s", focus)
	}
	b.WriteString(" and summarise its size and main languages\n")
	fmt.Fprintf(&b, "2. If the total token count fits comfortably in your context, run `%s` "+
		"with output_format=\"markdown\"", tools.ToolGetContext)
	if focus != "" {
		b.WriteString(" and the same include_patterns")
	}
	b.WriteString("\n")
	b.WriteString("3. If it does not fit, either narrow it with include/exclude patterns, set compress=true, " +
		"or pick the most relevant files from the largest-files list and run `" + tools.ToolGetFiles + "` on them\n")
	b.WriteString("4. Then give me an overview: purpose, structure, entry points and anything surprising")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Explore codebase: %s", root),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(b.String()),
			},
		},
	}, nil
}

// focusPatterns turns "a,b/{c,d}" into the JSON array ["a","b/{c,d}"].
// Commas inside braces belong to the glob. Empty input gives "".
func focusPatterns(raw string) string {
	var items []string
	depth, start := 0, 0
	flush := func(end int) {
		if p := strings.TrimSpace(raw[start:end]); p != "" {
			items = append(items, p)
		}
	}
	for i, r := range raw {
		switch r {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(raw))

	if len(items) == 0 {
		return ""
	}
	out, _ := json.Marshal(items)
	return string(out)
}
