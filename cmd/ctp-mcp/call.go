package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	ctpserver "github.com/HendryAvila/ctp-mcp/internal/server"
	"github.com/HendryAvila/ctp-mcp/internal/tools"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool definitions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tools.ListTools())
		},
	}
}

func newCallCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json-args]",
		Short: "Run one tool call and print the result",
		Long: `Run a single tool call through the same validation and dispatch as the
MCP server. Arguments are a JSON object; pass "-" to read it from stdin.
On failure the error code and message are printed to stderr, e.g.

  -32602: invalid arguments for ctp-get-files: paths: field required`,
		Example: `  ctp-mcp call ctp-analyse-project '{"root_path": ".", "top_n": 5}'
  ctp-mcp call ctp-get-files '{"root_path": ".", "paths": ["go.mod"]}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			raw := "{}"
			if len(args) == 2 {
				raw = args[1]
			}
			if raw == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading arguments: %w", err)
				}
				raw = string(data)
			}
			callArgs, err := decodeArgs(raw)
			if err != nil {
				return err
			}

			dispatcher := ctpserver.NewDispatcher(cfg, ctpserver.NewLogger(cfg, cmd.ErrOrStderr()))
			text, err := dispatcher.Call(cmd.Context(), args[0], callArgs)
			if err != nil {
				var f *tools.Failure
				if errors.As(err, &f) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d: %s\n", f.Code(), f.Message)
					return &exitError{err: err}
				}
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := io.WriteString(out, text); err != nil {
				return err
			}
			if !strings.HasSuffix(text, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

// decodeArgs parses a JSON object. null and blank input mean no arguments.
func decodeArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
