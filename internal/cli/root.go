// Package cli implements the commons-mcp-server command line: the MCP server
// itself and one-shot commands that print a single query as JSON.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/commons-mcp-server/internal/base"
	"github.com/olgasafonova/commons-mcp-server/internal/commons"
	"github.com/olgasafonova/commons-mcp-server/internal/config"
	"github.com/olgasafonova/commons-mcp-server/internal/kvstore"
)

const ServerName = "commons-mcp-server"

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records build information shown by --version and the MCP handshake
func SetVersion(v, built string) {
	version = v
	buildTime = built
}

// app holds the state shared by all commands once initialized
type app struct {
	cfgFile string

	cfg    *config.Config
	logger *slog.Logger
	store  kvstore.Store
	client *commons.Client
	stderr io.Writer

	closers []io.Closer
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   ServerName,
		Short: "MCP server and CLI for Wikimedia Commons",
		Long: `commons-mcp-server exposes Wikimedia Commons contributor statistics,
nearby Wikidata places, upload campaigns, media listings and file history
as Model Context Protocol tools.

Run "serve" to start the MCP server on stdio, or use one of the query
commands to print a single result as JSON.`,
		Version:            fmt.Sprintf("%s (built %s)", version, buildTime),
		SilenceUsage:       true,
		PersistentPreRunE:  a.initialize,
		PersistentPostRunE: a.shutdown,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./commons.yaml or ~/.commons-mcp/commons.yaml)")

	rootCmd.AddCommand(newServeCmd(a))
	for _, cmd := range newQueryCmds(a) {
		rootCmd.AddCommand(cmd)
	}

	return rootCmd
}

// initialize loads configuration and builds the logger, store and client
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	a.stderr = cmd.ErrOrStderr()

	logger, logCloser, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	a.logger = logger
	a.closers = append(a.closers, logCloser)

	store, err := kvstore.Open(cmd.Context(), cfg.KVStore())
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	a.store = store
	a.closers = append(a.closers, store)

	a.client = commons.NewClient(cfg.CommonsEndpoints(), store,
		commons.WithHTTPClient(base.NewHTTPClient(cfg.HTTP.Timeout)),
		commons.WithLogger(logger),
		commons.WithUserAgent(cfg.HTTP.UserAgent),
	)

	logger.Debug("Initialized",
		"store", cfg.Store.Driver,
		"language", cfg.Language(),
		"commons_api", cfg.Endpoints.CommonsAPI,
	)
	return nil
}

// shutdown closes the store and the log file in reverse order of opening
func (a *app) shutdown(*cobra.Command, []string) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
