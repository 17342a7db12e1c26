package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"ove-swap/pkg/chain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a swap or approval transaction",
	Long: `Check whether a transaction sent by a swap is pending, confirmed or failed.

Examples:
  ove-swap status 0x1234...abcd
  ove-swap status 0x1234...abcd --watch
  ove-swap status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates until the transaction is mined")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	txHash := args[0]
	if err := validateHash(txHash); err != nil {
		printError(err)
		os.Exit(1)
	}

	a, err := newApp(ctx, false)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer a.Close()

	if watchStatus {
		watchTxStatus(ctx, a, txHash)
		return
	}
	checkTxStatus(ctx, a, txHash)
}

func validateHash(s string) error {
	raw := strings.TrimPrefix(s, "0x")
	if len(raw) != 2*common.HashLength {
		return fmt.Errorf("invalid transaction hash: %s", s)
	}
	return nil
}

func checkTxStatus(ctx context.Context, a *app, txHash string) {
	var info *chain.TxInfo
	err := withSpinner(" Checking transaction status...", func() error {
		var err error
		info, err = chain.GetTransactionInfo(ctx, a.wallet, txHash)
		return err
	})
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(jsonData))
		return
	}
	displayStatus(a, info)
}

func watchTxStatus(ctx context.Context, a *app, txHash string) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Printf("\nWatching transaction %s\n", color.CyanString(txHash))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	for {
		info, err := chain.GetTransactionInfo(ctx, a.wallet, txHash)
		if err != nil {
			color.Red("Error: %v", err)
		} else {
			displayStatus(a, info)
			if info.Mined {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func displayStatus(a *app, info *chain.TxInfo) {
	banner("TRANSACTION STATUS", 70)

	fmt.Printf("\n  Hash:        %s\n", color.CyanString(info.Hash))
	fmt.Printf("  Status:      %s\n", getColoredStatus(info))
	if info.To != "" {
		fmt.Printf("  To:          %s\n", info.To)
	}
	fmt.Printf("  Nonce:       %d\n", info.Nonce)
	fmt.Printf("  Gas Limit:   %d\n", info.GasLimit)
	fmt.Printf("  Gas Price:   %s wei\n", info.GasPrice)
	if info.Value != "0" {
		fmt.Printf("  Value:       %s wei\n", info.Value)
	}
	if info.Mined {
		fmt.Printf("  Block:       %d\n", info.BlockNumber)
		fmt.Printf("  Gas Used:    %d\n", info.GasUsed)
	}
	if explorer := a.cfg.ExplorerURL; explorer != "" {
		fmt.Printf("  Explorer:    %s\n", color.HiBlackString(strings.TrimSuffix(explorer, "/")+"/tx/"+info.Hash))
	}

	footer(70)
}

func getColoredStatus(info *chain.TxInfo) string {
	switch {
	case info.Pending || !info.Mined:
		return color.YellowString("PENDING")
	case info.Success:
		return color.GreenString("SUCCESS")
	default:
		return color.RedString("FAILED")
	}
}
