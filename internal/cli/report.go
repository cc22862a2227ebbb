package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"time_dividends/internal/app/service"

	"github.com/spf13/cobra"
)

var (
	reportWallets  string
	reportNetworks []string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report dividends for every wallet of the watchlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportWallets != "" {
			cfg.Report.WalletsFile = reportWallets
		}
		c, err := newContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		rows, reportErrors := c.Reports.GenerateReport(cmd.Context(), reportNetworks)
		if jsonOut {
			return printJSON(map[string]any{
				"rows":          rows,
				"errors":        reportErrors,
				"failedWallets": service.FailedWallets(reportErrors),
			})
		}

		if len(rows) == 0 && len(reportErrors) == 0 {
			fmt.Println("No report data. Check the wallet list and network configuration.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WALLET\tNETWORK\tTIME\tCLAIMABLE\tCLAIMED")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.WalletAddress, r.NetworkID, r.Display.TokenBalance, r.Display.ClaimableAmount, r.Display.TotalClaimed)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if len(reportErrors) > 0 {
			fmt.Println()
			fmt.Printf("%d read(s) failed for %d wallet(s):\n", len(reportErrors), len(service.FailedWallets(reportErrors)))
			for _, e := range reportErrors {
				fmt.Printf("  %s on %s: %s\n", e.WalletAddress, e.NetworkID, e.Message)
			}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportWallets, "wallets", "w", "", "watchlist file (default from config)")
	reportCmd.Flags().StringSliceVarP(&reportNetworks, "network", "n", nil, "networks to include (default: all with a TIME contract)")
}
