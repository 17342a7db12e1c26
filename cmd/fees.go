package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"ove-swap/pkg/types"

	"github.com/spf13/cobra"
)

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Show the swap contract's buy and sell fees",
	Run:   runFees,
}

func init() {
	rootCmd.AddCommand(feesCmd)
}

func runFees(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := mustApp(ctx, false, "Connecting")
	defer a.Close()

	var fees types.FeeSchedule
	_ = withSpinner(" Fetching fees...", func() error {
		fees = a.session.Fees(ctx)
		return nil
	})

	if jsonOutput {
		output := map[string]interface{}{
			"buy_fee_bps":      fees.BuyFeeBps,
			"sell_fee_bps":     fees.SellFeeBps,
			"buy_fee_percent":  fees.BuyPercent(),
			"sell_fee_percent": fees.SellPercent(),
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	platform := a.registry.Platform().Symbol
	banner("SWAP FEES", 50)
	fmt.Printf("\n  Buy %-8s %s%% (%d bps)\n", platform, fees.BuyPercent(), fees.BuyFeeBps)
	fmt.Printf("  Sell %-7s %s%% (%d bps)\n", platform, fees.SellPercent(), fees.SellFeeBps)
	footer(50)
}
