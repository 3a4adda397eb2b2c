package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khanglvm/gift-hub/internal/mcp"
	"github.com/khanglvm/gift-hub/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCmd creates the 'serve' command for running the MCP server.
//
// This is the main command that exposes the gift tools via stdio transport:
// - gift_recommend, gift_catalog, gift_search
func NewServeCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start the gift-hub MCP server using stdio transport.

This server exposes 3 tools to AI clients:
  • gift_recommend - Recommend a budget-constrained gift bundle
  • gift_catalog   - List catalog items
  • gift_search    - Rank catalog items against free text

Requests are served concurrently up to settings.maxConcurrent.
When a metrics address is configured, Prometheus metrics are served at /metrics.`,
		Example: `  # Run directly
  gift-hub serve

  # Expose metrics
  gift-hub serve --metrics-addr :9090

  # Add to Claude Code
  claude mcp add gift-hub -- gift-hub serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (overrides settings.metricsAddr)")

	return cmd
}

// runServe starts the MCP server with stdio transport and signal handling.
// SIGINT, SIGTERM and SIGQUIT stop reading new requests; in-flight ones finish.
func runServe(cmd *cobra.Command, metricsAddr string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	rt, err := bootstrap(ctx, cmd, bootstrapOptions{longRunning: true, history: true, keyword: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.cleanupHistory()

	if metricsAddr == "" {
		metricsAddr = rt.cfg.Settings.MetricsAddr
	}
	if metricsAddr != "" {
		srv := startMetricsServer(metricsAddr, rt)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				rt.logger.Warn("metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	server := mcp.NewServer(rt.service, mcp.Options{
		MaxConcurrent: rt.cfg.Settings.MaxConcurrent,
		Keyword:       rt.keyword,
		Version:       version.Version,
		Logger:        rt.logger,
		In:            cmd.InOrStdin(),
		Out:           cmd.OutOrStdout(),
	})

	rt.logger.Info("serving",
		zap.Int("catalog_items", rt.catalog.Len()),
		zap.String("encoder", rt.encoder.ModelID()),
		zap.String("ranking", rt.cfg.Ranking.Mode))

	err = server.Run(ctx)
	if errors.Is(err, context.Canceled) {
		rt.logger.Info("shutdown complete")
		return nil
	}
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// startMetricsServer serves /metrics until shut down.
func startMetricsServer(addr string, rt *appRuntime) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	rt.logger.Info("metrics server listening", zap.String("addr", addr))
	return srv
}
