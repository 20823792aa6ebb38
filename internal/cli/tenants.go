package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// TenantInfo is one configured tenant as printed by the tenants command.
// Credentials are masked.
type TenantInfo struct {
	Name        string `json:"name"`
	Account     string `json:"vtex_account_name"`
	AppKey      string `json:"vtex_app_key"`
	AppToken    string `json:"vtex_app_token"`
	SheetID     string `json:"sheet_id"`
	SheetName   string `json:"sheet_name"`
	Complete    bool   `json:"complete"`
	ExcludedFor string `json:"excluded_for,omitempty"`
}

// NewTenantsCommand creates the tenants command.
func NewTenantsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "List configured tenants",
		Long: `List every configured tenant in pass order with credentials
masked. Incomplete tenants are listed with the reason they are skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTenants(rootOpts, cmd)
		},
	}
	return cmd
}

func runTenants(opts *RootOptions, cmd *cobra.Command) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	infos := make([]TenantInfo, 0, len(a.cfg.TenantList))
	for _, t := range a.cfg.TenantList {
		m := t.Masked()
		info := TenantInfo{
			Name:      m.Name,
			Account:   m.VtexAccountName,
			AppKey:    m.VtexAppKey,
			AppToken:  m.VtexAppToken,
			SheetID:   m.SheetID,
			SheetName: m.SheetName,
			Complete:  true,
		}
		if err := t.Validate(); err != nil {
			info.Complete = false
			info.ExcludedFor = err.Error()
		}
		infos = append(infos, info)
	}

	return a.out.Emit(infos, func(w io.Writer) { printTenants(w, infos) })
}

func printTenants(w io.Writer, infos []TenantInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No tenants configured.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tACCOUNT\tAPP KEY\tSHEET\tSTATUS")
	for _, t := range infos {
		status := "ok"
		if !t.Complete {
			status = "excluded: " + t.ExcludedFor
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s/%s\t%s\n", t.Name, t.Account, t.AppKey, t.SheetID, t.SheetName, status)
	}
	tw.Flush()
}
