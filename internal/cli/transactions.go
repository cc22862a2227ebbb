package cli

import (
	"errors"
	"fmt"

	"time_dividends/internal/domain/entity"

	"github.com/spf13/cobra"
)

var txNetwork string

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim dividends for the signer account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransaction(cmd, entity.ActionClaim)
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep dividends for the signer account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransaction(cmd, entity.ActionSweep)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{claimCmd, sweepCmd} {
		cmd.Flags().StringVarP(&txNetwork, "network", "n", "pulsechain", "network id")
	}
}

func runTransaction(cmd *cobra.Command, action entity.TransactionAction) error {
	c, err := newContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	network, err := resolveNetwork(c, txNetwork)
	if err != nil {
		return err
	}
	session, err := c.Wallet.Connect(cmd.Context(), "", network.ChainID)
	if err != nil {
		return errors.New(entity.UserMessage(err, "No signer configured"))
	}
	defer c.Wallet.Disconnect(session.ID)

	fmt.Printf("%s on %s from %s...\n", action, network.Name, session.Address)
	run := c.Transactions.Claim
	if action == entity.ActionSweep {
		run = c.Transactions.Sweep
	}
	outcome, err := run(cmd.Context(), session.ID)
	if jsonOut {
		if perr := printJSON(outcome); perr != nil {
			return perr
		}
	} else if outcome.TxHash != "" {
		fmt.Printf("Transaction: %s\n", outcome.TxHash)
		if outcome.TxURL != "" {
			fmt.Printf("Explorer:    %s\n", outcome.TxURL)
		}
	}
	if err != nil {
		if outcome.Error != "" {
			return errors.New(outcome.Error)
		}
		return err
	}
	if !jsonOut {
		fmt.Println("Confirmed.")
	}
	return nil
}
