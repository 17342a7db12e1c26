package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Check or switch the wallet's network",
}

var networkCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the wallet is on the required network",
	Run:   runNetworkCheck,
}

var networkSwitchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Switch the wallet to the required network, adding it first if unknown",
	Run:   runNetworkSwitch,
}

func init() {
	rootCmd.AddCommand(networkCmd)
	networkCmd.AddCommand(networkCheckCmd)
	networkCmd.AddCommand(networkSwitchCmd)
}

func runNetworkCheck(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := mustApp(ctx, false, "Connecting")
	defer a.Close()

	required := a.guard.Required()
	wrong := a.guard.WrongNetwork()

	if jsonOutput {
		output := map[string]interface{}{
			"chain_id":          a.guard.ChainID(),
			"required_chain_id": required.ChainID,
			"required_network":  required.ChainName,
			"wrong_network":     wrong,
			"rpc_url":           a.wallet.RPCURL(),
			"button":            a.session.ButtonState().String(),
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\n  RPC:       %s\n", color.HiBlackString(a.wallet.RPCURL()))
	fmt.Printf("  Chain ID:  %d\n", a.guard.ChainID())
	fmt.Printf("  Required:  %s (%d)\n", required.ChainName, required.ChainID)
	if wrong {
		fmt.Printf("  Status:    %s\n\n", color.RedString("WRONG NETWORK"))
		color.Yellow("Run 'ove-swap network switch' to switch to %s.\n", required.ChainName)
		return
	}
	fmt.Printf("  Status:    %s\n\n", color.GreenString("OK"))
}

func runNetworkSwitch(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := mustApp(ctx, false, "Connecting")
	defer a.Close()

	required := a.guard.Required()
	if !a.guard.WrongNetwork() {
		printSuccess(fmt.Sprintf("Already on %s", required.ChainName))
		return
	}

	err := withSpinner(fmt.Sprintf(" Switching to %s...", required.ChainName), func() error {
		return a.session.SwitchNetwork(ctx)
	})
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("Switched to %s (chain %d)", required.ChainName, a.guard.ChainID()))
}
