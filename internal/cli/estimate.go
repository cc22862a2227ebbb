package cli

import (
	"errors"
	"fmt"

	"time_dividends/internal/domain/entity"

	"github.com/spf13/cobra"
)

var estimateReq entity.EstimateRequest

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate dividend earnings for a TIME position",
	Example: `  dividends estimate --network pulsechain --amount 1000 --volume 1000000 --period monthly`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		est, err := c.Estimator.Estimate(cmd.Context(), estimateReq)
		if err != nil {
			return errors.New(entity.UserMessage(err, "Failed to estimate earnings"))
		}
		if jsonOut {
			return printJSON(est)
		}

		fmt.Printf("Network:          %s (fee rate %.4f%%)\n", est.NetworkID, est.FeeRate*100)
		fmt.Printf("Ownership share:  %.8f%%\n", est.OwnershipShare*100)
		fmt.Printf("Daily fees:       %.8f %s\n", est.DailyFees, est.Symbol)
		fmt.Printf("%-18s%s %s\n", string(est.Period)+" earnings:", est.PeriodEarnings, est.Symbol)
		fmt.Printf("USD value:        %s\n", est.ValueUSD)
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringVarP(&estimateReq.NetworkID, "network", "n", "pulsechain", "network id")
	estimateCmd.Flags().Float64Var(&estimateReq.TimeAmount, "amount", 1000, "TIME held")
	estimateCmd.Flags().Float64Var(&estimateReq.DailyVolume, "volume", 1000000, "daily trading volume")
	estimateCmd.Flags().StringVar((*string)(&estimateReq.Period), "period", string(entity.PeriodDaily), "daily, weekly, monthly or yearly")
}
