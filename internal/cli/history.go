package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ordersync/internal/ledger"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
	RunID string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded sync passes",
		Long: `Show the most recent sync passes, newest first. Only the last
50 passes are retained.

Examples:
  ordersync history
  ordersync history --limit 5 --format json
  ordersync history --run 01912f7e-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "number of passes to show (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one pass with per-tenant results")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	a, err := newApp(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.openStore()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if opts.RunID != "" {
		sum, ok, err := st.GetRun(ctx, opts.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run history", err)
		}
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		return a.out.Emit(sum, func(w io.Writer) { printSummary(w, sum) })
	}

	runs, err := st.List(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run history", err)
	}
	if runs == nil {
		runs = []ledger.RunSummary{}
	}
	return a.out.Emit(runs, func(w io.Writer) { printHistory(w, runs) })
}

// printHistory writes one line per pass.
func printHistory(w io.Writer, runs []ledger.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tRESULT\tROWS\tDURATION\tMESSAGE")
	for _, r := range runs {
		result := "ok"
		if !r.OverallSuccess {
			result = "failed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.Timestamp.Format(time.RFC3339), result, r.TotalRows, r.Duration.Round(time.Millisecond), r.Message)
	}
	tw.Flush()
}
