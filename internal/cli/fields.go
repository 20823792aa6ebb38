package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/ordersync/internal/normalize"
	"github.com/roach88/ordersync/internal/table"
)

// FieldInfo is one column of the canonical row.
type FieldInfo struct {
	Column string         `json:"column"`
	Name   string         `json:"name"`
	Kind   normalize.Kind `json:"kind"`
	Path   string         `json:"path,omitempty"`
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Print the data dictionary of the synced sheet",
		Long: `Print every column of the canonical row in sheet order with the
order path it is read from. Composite columns hold JSON text; only the first
element of nested lists is read.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(rootOpts, cmd)
		},
	}
	return cmd
}

func runFields(opts *RootOptions, cmd *cobra.Command) error {
	fields := normalize.Describe()
	infos := make([]FieldInfo, len(fields))
	for i, f := range fields {
		infos[i] = FieldInfo{Column: table.ColumnLetter(i), Name: f.Name, Kind: f.Kind, Path: f.Path}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Emit(infos, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "COL\tNAME\tKIND\tPATH")
		for _, f := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Column, f.Name, f.Kind, f.Path)
		}
		tw.Flush()
	})
}
