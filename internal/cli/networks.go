package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"time_dividends/internal/client"

	"github.com/spf13/cobra"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		networks := c.Networks.GetAllNetworkDefinitions()
		if jsonOut {
			return printJSON(networks)
		}

		defaultID := c.Networks.DefaultNetwork().ID
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCHAIN\tSYMBOL\tINDEXED\tTIME CONTRACT")
		for _, n := range networks {
			contract := "-"
			if n.HasToken() {
				contract = n.TokenAddress
			}
			id := n.ID
			if id == defaultID {
				id += " *"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%t\t%s\n", id, n.Name, n.ChainID, n.Symbol, client.IsValidChain(n.IndexerChain), contract)
		}
		return w.Flush()
	},
}
