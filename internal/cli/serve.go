package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/olgasafonova/commons-mcp-server/tools"
	"github.com/olgasafonova/commons-mcp-server/tracing"
)

const serverInstructions = `Commons MCP Server provides read access to Wikimedia Commons and related services.

Available tool groups:
- Contributor statistics: upload count, Wikidata edit count, achievements, combined profile
- Places: Wikidata items near a coordinate that may need photos
- Campaigns: current upload campaigns
- Media: picture of the day, search results and category listings (paged)
- History: a random sample of recent file changes, the first revision of a file

commons_media_list remembers where each keyword's listing stopped. Pass the
returned continue object back to page explicitly, or call
commons_reset_continuation to start over.`

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: `Run the Model Context Protocol server over stdin/stdout.

When metrics.addr is set, Prometheus metrics are served at /metrics on that
address. When tracing.enabled is set, spans are exported over OTLP (or to
stderr when no endpoint is configured).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), mcp.NewServer(&mcp.Implementation{
				Name:    ServerName,
				Version: version,
			}, &mcp.ServerOptions{
				Logger:       a.logger,
				Instructions: serverInstructions,
			}), &mcp.StdioTransport{})
		},
	}
}

// serve registers every tool on server and runs it on transport until ctx
// is canceled or the client disconnects.
func (a *app) serve(ctx context.Context, server *mcp.Server, transport mcp.Transport) error {
	tracingCfg := a.cfg.TracingSetup(ServerName, version)
	tracingCfg.Writer = a.stderr

	shutdownTracing, err := tracing.Setup(ctx, tracingCfg)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			a.logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	if a.cfg.Metrics.Addr != "" {
		stopMetrics := a.startMetrics(a.cfg.Metrics.Addr)
		defer stopMetrics()
	}

	registry := tools.NewHandlerRegistry(a.client, a.logger)
	registry.RegisterAll(server)

	a.logger.Info("Starting Commons MCP Server",
		"name", ServerName,
		"version", version,
		"store", a.cfg.Store.Driver,
		"commons_api", a.cfg.Endpoints.CommonsAPI,
		"tracing", tracingCfg.Enabled,
	)

	if err := server.Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	a.logger.Info("Server stopped")
	return nil
}

// startMetrics serves /metrics on addr and returns a function that stops it
func (a *app) startMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		a.logger.Info("Metrics listener starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics listener failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Warn("Metrics listener shutdown failed", "error", err)
		}
	}
}
