package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/ordersync/internal/config"
	"github.com/roach88/ordersync/internal/destination"
	"github.com/roach88/ordersync/internal/destination/sheets"
	"github.com/roach88/ordersync/internal/engine"
	"github.com/roach88/ordersync/internal/ledger"
	"github.com/roach88/ordersync/internal/metrics"
	"github.com/roach88/ordersync/internal/orchestrator"
	"github.com/roach88/ordersync/internal/store"
	"github.com/roach88/ordersync/internal/vtex"
)

// app is the wiring shared by commands: the loaded configuration and the
// collaborators built from it. The store is opened lazily and closed by
// Close.
type app struct {
	opts   *RootOptions
	cfg    config.Config
	logger *slog.Logger
	out    *OutputFormatter
	store  *store.Store
}

// newApp loads configuration and installs the logger. Configuration errors
// are command errors.
func newApp(cmd *cobra.Command, opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg, opts.Verbose)
	slog.SetDefault(logger)
	cfg.WarnExcluded(logger)

	return &app{
		opts:   opts,
		cfg:    cfg,
		logger: logger,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

// newLogger builds the process logger on w. --verbose forces debug.
func newLogger(w io.Writer, cfg config.Config, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}
	return slog.New(handler)
}

// Close releases the store if it was opened.
func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
	a.store = nil
}

// openStore opens the SQLite store at the configured path.
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	a.logger.Debug("opening database", "path", a.cfg.StorePath)
	st, err := store.Open(a.cfg.StorePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	a.store = st
	return st, nil
}

// runLedger returns the SQLite-backed run ledger.
func (a *app) runLedger() (ledger.Ledger, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return st, nil
}

// destination builds the client for the configured driver.
func (a *app) destination(ctx context.Context) (destination.Client, error) {
	switch a.cfg.Destination.Driver {
	case config.DriverMemory:
		return destination.NewMemory(), nil
	case config.DriverSQLite:
		st, err := a.openStore()
		if err != nil {
			return nil, err
		}
		return st.Workbook(), nil
	case config.DriverSheets:
		c, err := sheets.NewFromCredentials(ctx, a.cfg.Destination.CredentialsFile)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create sheets client", err)
		}
		return c, nil
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown destination driver %q", a.cfg.Destination.Driver))
	}
}

// source builds the upstream order source.
func (a *app) source() *vtex.Source {
	return vtex.NewSource(a.cfg.Upstream, a.opts.HTTPClient, a.logger)
}

// engine builds a reconcile engine writing through dest.
func (a *app) engine(dest destination.Client) *engine.Engine {
	return engine.New(dest, engine.WithLogger(a.logger))
}

// orchestrator wires one orchestrator. led and reg may be nil.
func (a *app) orchestrator(dest destination.Client, led ledger.Ledger, reg prometheus.Registerer) *orchestrator.Orchestrator {
	opts := []orchestrator.Option{
		orchestrator.WithClock(a.opts.Clock),
		orchestrator.WithIDGenerator(a.opts.IDGenerator),
		orchestrator.WithLogger(a.logger),
	}
	if led != nil {
		opts = append(opts, orchestrator.WithLedger(led))
	}
	if reg != nil {
		opts = append(opts, orchestrator.WithMetrics(metrics.New(reg)))
	}
	return orchestrator.New(a.source(), a.engine(dest), opts...)
}

// clock returns the configured clock.
func (a *app) clock() engine.Clock {
	if a.opts.Clock != nil {
		return a.opts.Clock
	}
	return engine.SystemClock{}
}

// tenant looks up a complete tenant by name.
func (a *app) tenant(name string) (config.Tenant, error) {
	if name == "" {
		return config.Tenant{}, NewExitError(ExitCommandError, "--tenant is required")
	}
	t, ok := a.cfg.Tenant(name)
	if !ok {
		return config.Tenant{}, NewExitError(ExitCommandError, fmt.Sprintf("unknown or incomplete tenant %q", name))
	}
	return t, nil
}

// commandContext returns the command's context, or Background outside
// Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
