package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	logLevel   string
	assumeYes  bool
)

var rootCmd = &cobra.Command{
	Use:   "ove-swap",
	Short: "A CLI for swapping BNB and OVE through the OVE swap contract",
	Long: `ove-swap quotes and executes swaps between the chain's native asset and
the OVE platform token through a single on-chain AMM contract.

Configuration is read from .ove-swap.yaml ($HOME or the working directory),
OVE_SWAP_* environment variables and an optional .env file.

Examples:
  ove-swap quote 1 BNB to OVE
  ove-swap swap 25000 OVE to BNB
  ove-swap balance
  ove-swap prices --watch
  ove-swap network switch
  ove-swap status <tx-hash>`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides log_level")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts")
}

func printError(err error) {
	fmt.Printf("\n%s %v\n\n", color.RedString("Error:"), err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", color.GreenString(message))
}

func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func banner(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	pad := (width - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	color.Green(strings.Repeat(" ", pad) + title)
	fmt.Println(strings.Repeat("=", width))
}

func footer(width int) {
	fmt.Println("\n" + strings.Repeat("=", width) + "\n")
}
