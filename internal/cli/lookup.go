package cli

import (
	"errors"
	"fmt"

	"time_dividends/internal/app/bootstrap"
	"time_dividends/internal/app/service"
	"time_dividends/internal/domain/entity"

	"github.com/spf13/cobra"
)

var lookupNetwork string

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Show the TIME balance of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		network, err := resolveNetwork(c, lookupNetwork)
		if err != nil {
			return err
		}
		balance, err := c.Balances.FetchTokenBalance(cmd.Context(), args[0], network)
		if err != nil {
			return errors.New(entity.UserMessage(err, entity.MsgBalanceFallback))
		}
		display := service.BalanceDisplayFor(balance)
		if jsonOut {
			return printJSON(map[string]any{"balance": balance, "display": display})
		}

		fmt.Printf("Network:  %s\n", network.Name)
		fmt.Printf("Balance:  %s TIME\n", display.Amount)
		fmt.Printf("Value:    %s\n", display.Value)
		return nil
	},
}

var dividendsCmd = &cobra.Command{
	Use:   "dividends <address>",
	Short: "Show the dividend position of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		network, err := resolveNetwork(c, lookupNetwork)
		if err != nil {
			return err
		}
		snapshot, err := c.Dividends.FetchDividendData(cmd.Context(), args[0], network)
		if err != nil {
			return errors.New(entity.UserMessage(err, "Failed to fetch dividend data. Please try again."))
		}
		display := service.DividendDisplayFor(snapshot)
		if jsonOut {
			return printJSON(map[string]any{"dividends": snapshot, "display": display})
		}

		fmt.Printf("Network:        %s\n", network.Name)
		fmt.Printf("TIME balance:   %s\n", display.TokenBalance)
		fmt.Printf("Claimable:      %s %s\n", display.ClaimableAmount, network.Symbol)
		fmt.Printf("Total claimed:  %s %s\n", display.TotalClaimed, network.Symbol)
		if !display.HasTokens {
			fmt.Println("No TIME tokens found on this network.")
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{balanceCmd, dividendsCmd} {
		cmd.Flags().StringVarP(&lookupNetwork, "network", "n", "", "network id (default: configured default network)")
	}
}

func resolveNetwork(c *bootstrap.Container, id string) (entity.NetworkDescriptor, error) {
	if id == "" {
		return c.Networks.DefaultNetwork(), nil
	}
	network, ok := c.Networks.GetNetworkDefinitionByName(id)
	if !ok {
		return entity.NetworkDescriptor{}, fmt.Errorf("unknown network %q", id)
	}
	return network, nil
}
