package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/ordersync/internal/destination"
	"github.com/roach88/ordersync/internal/ledger"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	DryRun bool
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass across all tenants",
		Long: `Run one sync pass: fetch each tenant's orders, normalize them and
reconcile them into the tenant's sheet. The pass is recorded in the run
history.

Exit codes:
  0 - Every tenant succeeded
  1 - One or more tenants failed
  2 - Command error (bad config, database not found, etc.)

Examples:
  ordersync sync --config ordersync.yaml
  ordersync sync --dry-run --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "write to an in-memory destination and skip the run history")

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	a, err := newApp(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		dest destination.Client
		led  ledger.Ledger
	)
	if opts.DryRun {
		a.out.VerboseLog("dry run: writing to an in-memory destination")
		dest = destination.NewMemory()
	} else {
		if dest, err = a.destination(ctx); err != nil {
			return err
		}
		if led, err = a.runLedger(); err != nil {
			return err
		}
	}

	sum := a.orchestrator(dest, led, nil).RunAll(ctx, a.cfg.Tenants())

	if err := a.out.Emit(sum, func(w io.Writer) { printSummary(w, sum) }); err != nil {
		return err
	}
	if !sum.OverallSuccess {
		return NewExitError(ExitFailure, sum.Message)
	}
	return nil
}

// printSummary writes a pass summary as a table, one line per tenant.
func printSummary(w io.Writer, sum ledger.RunSummary) {
	fmt.Fprintf(w, "Run %s (%s)\n", sum.ID, sum.RunDate)
	if len(sum.Results) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, r := range sum.Results {
			if r.Outcome == ledger.OutcomeFailed {
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.TenantName, r.Outcome, r.ErrorCode, r.Error)
				continue
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%d rows\n", r.TenantName, r.Outcome, r.Strategy, r.RowsWritten)
		}
		tw.Flush()
	}
	fmt.Fprintln(w, sum.Message)
}
