package main

import (
	"fmt"
	"os"

	"github.com/HendryAvila/ctp-mcp/internal/config"
	ctpserver "github.com/HendryAvila/ctp-mcp/internal/server"
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "ctp-mcp",
		Short: "Codebase-to-prompt MCP server",
		Long: `ctp-mcp turns a codebase into a single prompt for a language model.

It runs as a Model Context Protocol server exposing three tools:
  ctp-get-context      whole project as a prompt (tree plus file contents)
  ctp-analyse-project  token, line and file-type statistics
  ctp-get-files        selected files as a prompt

Logs go to stderr; on stdio, stdout carries only MCP traffic.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default <user config dir>/ctp-mcp/config.yaml)")

	root.AddCommand(
		newServeCmd(opts),
		newToolsCmd(),
		newCallCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ctp-mcp v%s\n", ctpserver.Version)
		},
	}
}

// logTarget is where diagnostics go. stdout is reserved for MCP traffic
// and command output.
var logTarget = os.Stderr
