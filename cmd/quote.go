package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ove-swap/pkg/parser"
	"ove-swap/pkg/quote"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <from-token> to <to-token>",
	Short: "Get a swap quote from the swap contract",
	Long: `Ask the swap contract how much you would receive for a given input,
including the protocol fee and its USD value.

Examples:
  ove-swap quote 1 BNB to OVE
  ove-swap quote 25000 OVE to BNB
  ove-swap quote 100 USDT -> OVE`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	command, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	a := mustApp(ctx, false, "Connecting")
	defer a.Close()

	q, err := fetchQuote(a, command)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		printQuoteJSON(q)
		return
	}
	displayQuote(q)
}

// fetchQuote points the session at the command's pair and waits for the
// debounced quote to settle.
func fetchQuote(a *app, command *parser.Command) (quote.Quote, error) {
	pair, err := command.Resolve(a.registry)
	if err != nil {
		return quote.Quote{}, err
	}
	if err := applyPair(a.session, pair); err != nil {
		return quote.Quote{}, err
	}

	var q quote.Quote
	_ = withSpinner(" Fetching quote...", func() error {
		a.session.SetAmount(command.Amount)
		q = a.session.WaitQuote()
		return nil
	})

	if q.Failed() {
		return q, fmt.Errorf("failed to get quote: %w", q.Err)
	}
	if q.IsEmpty() {
		return q, fmt.Errorf("invalid amount: %s", command.Amount)
	}
	return q, nil
}

func printQuoteJSON(q quote.Quote) {
	output := map[string]interface{}{
		"from_token":      q.Pair.From.Symbol,
		"to_token":        q.Pair.To.Symbol,
		"input_amount":    q.Input.String(),
		"output_amount":   q.OutputAmount,
		"fee_amount":      q.FeeAmount,
		"fee_symbol":      q.FeeSymbol,
		"fee_amount_fiat": q.FeeAmountFiat,
		"fee_percent":     q.FeePercent,
		"exchange_rate":   q.ExchangeRate,
		"min_received":    q.MinReceived,
	}
	jsonData, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(jsonData))
}

func displayQuote(q quote.Quote) {
	from, to := q.Pair.From.Symbol, q.Pair.To.Symbol

	banner("SWAP QUOTE", 60)
	fmt.Printf("\n  From:              %s %s\n", q.Input.String(), color.YellowString(from))
	fmt.Printf("  To:                ~%s %s\n", q.OutputAmount, color.YellowString(to))
	fmt.Printf("  Rate:              1 %s = %s %s\n", from, q.ExchangeRate, to)
	fmt.Printf("  Fee:               %s %s (%s)\n", q.FeeAmount, q.FeeSymbol, q.FeeDisplay())
	fmt.Printf("  Fee Rate:          %s%%\n", q.FeePercent)
	fmt.Printf("  Minimum Received:  %s %s\n", q.MinReceived, to)
	footer(60)
}
