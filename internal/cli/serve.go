package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/roach88/ordersync/internal/metrics"
	"github.com/roach88/ordersync/internal/scheduler"
)

// shutdownTimeout bounds the metrics server's graceful shutdown.
const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Interval    time.Duration
	MetricsAddr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run sync passes on a schedule",
		Long: `Run a sync pass at startup and then on every schedule interval,
serving Prometheus metrics at /metrics and a liveness probe at /health.

Passes never overlap. SIGHUP requests an immediate pass; SIGINT or SIGTERM
stops the scheduler after the running pass.

Example:
  ordersync serve --config ordersync.yaml
  ordersync serve --interval 15m --metrics-addr :9100`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "override schedule.interval")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "override metrics.addr")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	a, err := newApp(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	dest, err := a.destination(ctx)
	if err != nil {
		return err
	}
	led, err := a.runLedger()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orch := a.orchestrator(dest, led, reg)

	interval := a.cfg.Schedule.Interval.Std()
	if opts.Interval > 0 {
		interval = opts.Interval
	}
	addr := a.cfg.Metrics.Addr
	if opts.MetricsAddr != "" {
		addr = opts.MetricsAddr
	}

	srv := metrics.NewServer(addr, reg, a.logger)
	srv.Start()
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()
		if err := srv.Stop(stopCtx); err != nil {
			a.logger.Error("error stopping metrics server", "error", err)
		}
	}()

	sched := scheduler.New(interval, func(ctx context.Context) {
		sum := orch.RunAll(ctx, a.cfg.Tenants())
		if !sum.OverallSuccess {
			a.logger.Warn("sync pass failed", "run_id", sum.ID, "message", sum.Message)
		}
	}, a.logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		for {
			select {
			case sig := <-sigChan:
				if sig == syscall.SIGHUP {
					slog.Info("received SIGHUP, requesting pass")
					sched.Trigger()
					continue
				}
				slog.Info("received signal, shutting down", "signal", sig)
				cancel()
				return
			case <-ctx.Done():
				// Parent context cancelled (e.g., from test)
				return
			}
		}
	}()

	a.logger.Info("scheduler starting", "interval", interval, "tenants", len(a.cfg.Tenants()), "metrics_addr", addr)
	fmt.Fprintf(cmd.OutOrStdout(), "Scheduler started. Syncing every %s...\n", interval)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "scheduler error", err)
	}

	a.logger.Info("scheduler stopped gracefully")
	return nil
}
