package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/roach88/ordersync/internal/engine"
	"github.com/roach88/ordersync/internal/orchestrator"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // config file; empty reads the environment and .env

	// HTTPClient overrides the upstream HTTP client (for testing).
	HTTPClient *http.Client

	// Clock overrides the clock the run date comes from (for testing).
	Clock engine.Clock

	// IDGenerator overrides the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator orchestrator.IDGenerator

	// BigQueryOptions override the BigQuery client transport (for testing).
	BigQueryOptions []option.ClientOption
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ordersync CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ordersync",
		Short: "ordersync - VTEX orders into spreadsheets",
		Long: `Sync invoiced VTEX orders for every configured tenant into its
spreadsheet, appending new orders during the day and rewriting the sheet
on the first pass of a new day.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config file (.yaml, .cue, .json, .jsonc); default reads the environment")

	// Add subcommands
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewBigQueryCommand(opts))
	cmd.AddCommand(NewTenantsCommand(opts))
	cmd.AddCommand(NewProbeCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
