package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/fairfund/fairfund/internal/output"
	"github.com/fairfund/fairfund/internal/wallet"
)

var walletsMobile bool

var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "List wallet options available in this environment",
	Long: `List the wallet options that can link an account, filtered the same
way the connect flow filters them: mobile-only entries are hidden on desktop,
and injected-provider entries appear only when a provider is reachable.`,
	RunE: runWallets,
}

// walletRow is the JSON shape for a single wallet option.
type walletRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Capability  string `json:"capability"`
	ExternalURL string `json:"external_url,omitempty"`
}

func optionCapability(o wallet.Option) string {
	if o.ExternalLink != "" {
		return "link"
	}
	return "connect"
}

func formatWalletsJSON(w io.Writer, options []wallet.Option) error {
	rows := make([]walletRow, 0, len(options))
	for _, o := range options {
		rows = append(rows, walletRow{
			ID:          o.ID,
			Name:        o.DisplayName,
			Capability:  optionCapability(o),
			ExternalURL: o.ExternalLink,
		})
	}
	return output.NewFormatter(output.FormatJSON, w).Print(rows)
}

func formatWalletsText(w io.Writer, options []wallet.Option) error {
	if len(options) == 0 {
		_, err := io.WriteString(w, "No wallet options available in this environment.\n")
		return err
	}

	table := output.NewTable("ID", "NAME", "CAPABILITY")
	for _, o := range options {
		table.AddRow(o.ID, o.DisplayName, optionCapability(o))
	}
	return table.Render(w)
}

func runWallets(cmd *cobra.Command, _ []string) error {
	ctx := globalContext()
	env := buildWalletEnvironment(ctx.Config, walletsMobile, ctx.Logger)

	options := env.registry.Filter(env.facts)
	w := cmd.OutOrStdout()

	if ctx.Formatter.IsJSON() {
		return formatWalletsJSON(w, options)
	}
	return formatWalletsText(w, options)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	walletsCmd.Flags().BoolVar(&walletsMobile, "mobile", false, "filter options as a mobile environment")
	rootCmd.AddCommand(walletsCmd)
}
