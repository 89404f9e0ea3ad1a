// ctp-mcp: codebase-to-prompt MCP server
//
// Exposes a prompt engine to MCP clients (Claude Code, Cursor, VS Code
// Copilot and others) through three read-only tools.
//
// Usage:
//
//	ctp-mcp serve                 # MCP server on stdio
//	ctp-mcp serve --http :8080    # MCP server on streamable HTTP
//	ctp-mcp tools                 # print tool definitions as JSON
//	ctp-mcp call <tool> '<json>'  # run one tool call and print the result
//	ctp-mcp version
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if !errors.As(err, &exit) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// exitError signals a failure that was already reported to the user.
type exitError struct {
	err error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
