package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ove-swap/config"
	"ove-swap/pkg/types"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var filterSymbol string

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List all tradable assets",
	Long: `List the assets the swap contract can trade: the native asset, the OVE
platform token and any configured ERC20 counter-assets.

Examples:
  ove-swap list-tokens
  ove-swap list-tokens --symbol USD`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(config.New())
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	registry, err := cfg.Registry()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	filtered := registry.Assets()
	if filterSymbol != "" {
		var temp []types.Asset
		for _, asset := range filtered {
			if strings.Contains(strings.ToUpper(asset.Symbol), strings.ToUpper(filterSymbol)) {
				temp = append(temp, asset)
			}
		}
		filtered = temp
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(filtered, "", "  ")
		fmt.Println(string(jsonData))
		return
	}
	displayTokens(registry, filtered)
}

func displayTokens(registry *types.Registry, assets []types.Asset) {
	if len(assets) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	banner("SUPPORTED TOKENS", 70)
	fmt.Println()
	for _, asset := range assets {
		kind := "token"
		switch {
		case asset.IsNative:
			kind = "native"
		case registry.IsPlatform(asset):
			kind = "platform"
		}

		address := asset.Address.Hex()
		if asset.IsNative {
			address = "-"
		}

		fmt.Printf("  %-10s  %-8s  %2d decimals  %s\n",
			color.YellowString(asset.Symbol),
			kind,
			asset.Decimals,
			color.HiBlackString(address))
	}
	footer(70)
	fmt.Printf("Total: %d tokens\n\n", len(assets))
}
