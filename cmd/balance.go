package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"ove-swap/pkg/types"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var balanceAccount string

var balanceCmd = &cobra.Command{
	Use:     "balance",
	Aliases: []string{"balances", "bal"},
	Short:   "Show balances of every registered asset",
	Long: `Show the native, OVE and configured token balances of an account.
Defaults to the configured wallet.

Examples:
  ove-swap balance
  ove-swap balance --account 0x1234...abcd`,
	Run: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().StringVar(&balanceAccount, "account", "", "Account address (defaults to the configured wallet)")
}

func runBalance(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := mustApp(ctx, false, "Connecting")
	defer a.Close()

	account, err := parseAccount(balanceAccount, a)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	var balances map[string]types.Balance
	_ = withSpinner(" Fetching balances...", func() error {
		balances = a.session.RefreshBalancesFor(ctx, account)
		return nil
	})

	if jsonOutput {
		output := map[string]interface{}{
			"account":  account.Hex(),
			"balances": balances,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\nAccount: %s\n", color.CyanString(types.ShortenAddress(account)))
	printBalances(balances)
}

func printBalances(balances map[string]types.Balance) {
	symbols := make([]string, 0, len(balances))
	for symbol := range balances {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		fmt.Printf("  %s\n", color.YellowString(balances[symbol].Display))
	}
	fmt.Println()
}
