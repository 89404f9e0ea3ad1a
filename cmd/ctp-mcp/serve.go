package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ctpserver "github.com/HendryAvila/ctp-mcp/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// useConfigAddr is the --http value when the flag is given without an address.
const useConfigAddr = "config"

func newServeCmd(opts *rootOptions) *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Start the MCP server. By default it speaks MCP over stdin/stdout.
With --http it serves the streamable HTTP transport at /mcp instead,
plus a health check at /healthz. "--http" alone uses http_addr from the
config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := ctpserver.NewLogger(cfg, logTarget)

			s, err := ctpserver.New(cfg, logger)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("http") {
				logger.Info("serving MCP on stdio", "name", cfg.Name, "version", ctpserver.Version)
				return server.ServeStdio(s, server.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)))
			}

			addr := httpAddr
			if addr == useConfigAddr {
				addr = cfg.HTTPAddr
			}
			return serveHTTP(cmd.Context(), addr, ctpserver.NewHTTPHandler(s, logger), logger)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	cmd.Flags().Lookup("http").NoOptDefVal = useConfigAddr
	return cmd
}

// serveHTTP runs the HTTP server until SIGINT/SIGTERM, then shuts it down.
func serveHTTP(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP on streamable HTTP", "addr", addr, "path", ctpserver.MCPPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
