package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"ove-swap/pkg/parser"
	"ove-swap/pkg/session"
	"ove-swap/pkg/swap"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <from-token> to <to-token>",
	Short: "Swap tokens through the swap contract",
	Long: `Quote and execute a swap. Paying with an ERC20 token (including OVE)
first sends an approval transaction, then the swap itself.

IMPORTANT:
  - A private key MUST be configured (OVE_SWAP_PRIVATE_KEY or private_key)
  - You will be asked to confirm the quote and every signature unless --yes is set

Examples:
  ove-swap swap 0.5 BNB to OVE
  ove-swap swap 25000 OVE to BNB
  ove-swap swap 100 USDT to OVE --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)
}

func runSwap(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	command, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	a := mustApp(ctx, true, "Connecting wallet")
	defer a.Close()

	if !ensureNetwork(ctx, a) {
		printError(swap.ErrNetworkMismatch)
		os.Exit(1)
	}

	q, err := fetchQuote(a, command)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if !jsonOutput {
		displayQuote(q)
	}

	if !assumeYes {
		if !confirm("Proceed with swap?") {
			fmt.Println("\nSwap cancelled.")
			return
		}
	}

	if a.session.ButtonState() != session.ButtonSwap {
		printError(fmt.Errorf("swap not available: %s", a.session.ButtonState()))
		os.Exit(1)
	}

	if !jsonOutput {
		if q.Pair.From.IsNative {
			color.Yellow("\nSubmitting swap...")
		} else {
			color.Yellow("\nApproving %s, then submitting swap...", q.Pair.From.Symbol)
		}
	}

	res, err := a.session.Swap(ctx)
	if err != nil {
		var swapErr *swap.Error
		if errors.As(err, &swapErr) && jsonOutput {
			output := map[string]interface{}{
				"status":  "failed",
				"kind":    swapErr.Kind.String(),
				"step":    swapErr.Step,
				"message": swapErr.Message,
			}
			jsonData, _ := json.MarshalIndent(output, "", "  ")
			fmt.Println(string(jsonData))
			os.Exit(1)
		}
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"status":      "confirmed",
			"swap_id":     res.Request.ID,
			"from_token":  res.Request.Pair.From.Symbol,
			"to_token":    res.Request.Pair.To.Symbol,
			"amount_in":   res.AmountIn,
			"amount_out":  res.AmountOut,
			"swap_tx":     res.SwapTx.Hex(),
			"block":       res.Block,
			"gas_used":    res.GasUsed,
			"message":     res.Message(),
			"approval_tx": nil,
		}
		if res.ApproveTx != nil {
			output["approval_tx"] = res.ApproveTx.Hex()
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	printSuccess(res.Message())
	if res.ApproveTx != nil {
		fmt.Printf("  Approval Tx: %s\n", color.HiBlackString(res.ApproveTx.Hex()))
	}
	fmt.Printf("  Swap Tx:     %s\n", color.CyanString(res.SwapTx.Hex()))
	fmt.Printf("  Block:       %d\n", res.Block)
	fmt.Printf("  Gas Used:    %d\n", res.GasUsed)

	if explorer := a.cfg.ExplorerURL; explorer != "" {
		fmt.Printf("\nView on explorer:\n")
		color.Cyan("  %s/tx/%s\n", strings.TrimSuffix(explorer, "/"), res.SwapTx.Hex())
	}

	fmt.Println()
	printBalances(a.session.Balances())
}
