package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/ordersync/internal/engine"
	"github.com/roach88/ordersync/internal/normalize"
)

// ProbeOptions holds flags for the probe command.
type ProbeOptions struct {
	*RootOptions
	Tenant string
}

// ProbeResult is a tenant sheet's current state and the strategy the next
// pass would take.
type ProbeResult struct {
	Tenant     string   `json:"tenant"`
	SheetID    string   `json:"sheet_id"`
	SheetName  string   `json:"sheet_name"`
	RunDate    string   `json:"run_date"`
	Exists     bool     `json:"exists"`
	Header     []string `json:"header,omitempty"`
	SampleDate string   `json:"sample_date,omitempty"`
	Strategy   string   `json:"strategy"`
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Show a tenant sheet's state and the strategy the next pass takes",
		Long: `Read the header and first data row of a tenant's sheet and report
whether the next pass would append new orders or rewrite the sheet. Nothing
is written.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "tenant name (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runProbe(opts *ProbeOptions, cmd *cobra.Command) error {
	a, err := newApp(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.tenant(opts.Tenant)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	dest, err := a.destination(ctx)
	if err != nil {
		return err
	}

	runDate := engine.RunDate(a.clock().Now())
	plan, err := a.engine(dest).Plan(ctx, t.SheetID, t.SheetName, runDate)
	if err != nil {
		_ = a.out.Error(ErrorCode(err), err.Error(), map[string]string{"tenant": t.Name})
		return WrapExitError(ExitFailure, "probe failed", err)
	}

	res := ProbeResult{
		Tenant:    t.Name,
		SheetID:   t.SheetID,
		SheetName: t.SheetName,
		RunDate:   runDate,
		Exists:    plan.State.Exists,
		Header:    plan.State.Header,
		Strategy:  string(plan.Strategy),
	}
	res.SampleDate, _ = plan.State.SampleValue(normalize.DateField)

	return a.out.Emit(res, func(w io.Writer) { printProbe(w, res) })
}

func printProbe(w io.Writer, r ProbeResult) {
	fmt.Fprintf(w, "Tenant:   %s\n", r.Tenant)
	fmt.Fprintf(w, "Sheet:    %s / %s\n", r.SheetID, r.SheetName)
	switch {
	case !r.Exists:
		fmt.Fprintln(w, "State:    missing (will be created)")
	case r.Header == nil:
		fmt.Fprintln(w, "State:    empty")
	case r.SampleDate == "":
		fmt.Fprintf(w, "State:    %d columns, no data rows\n", len(r.Header))
	default:
		fmt.Fprintf(w, "State:    %d columns, data from %s\n", len(r.Header), r.SampleDate)
	}
	fmt.Fprintf(w, "Run date: %s\n", r.RunDate)
	fmt.Fprintf(w, "Strategy: %s\n", r.Strategy)
}
