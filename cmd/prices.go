package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const defaultPriceInterval = 30 * time.Second

var (
	watchPrices   bool
	priceInterval time.Duration
	metricsAddr   string
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Show USD reference prices of BNB and OVE",
	Long: `Read the USD reference prices the swap contract publishes for the native
asset and the OVE token.

Examples:
  ove-swap prices
  ove-swap prices --watch
  ove-swap prices --watch --metrics-addr :9102`,
	Run: runPrices,
}

func init() {
	rootCmd.AddCommand(pricesCmd)

	pricesCmd.Flags().BoolVarP(&watchPrices, "watch", "w", false, "Refresh prices continuously")
	pricesCmd.Flags().DurationVar(&priceInterval, "interval", defaultPriceInterval, "Refresh interval (when watching)")
	pricesCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while watching")
}

func runPrices(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := mustApp(ctx, false, "Connecting")
	defer a.Close()

	if !watchPrices {
		var prices map[string]decimal.Decimal
		_ = withSpinner(" Fetching prices...", func() error {
			prices = a.session.Prices(ctx)
			return nil
		})
		displayPrices(prices)
		return
	}

	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: a.metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error().Err(err).Str("addr", metricsAddr).Msg("metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		a.log.Info().Str("addr", metricsAddr).Msg("serving metrics")
	}

	// Read failures keep the last good price; surface them as they happen.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-a.reader.Errors():
				color.Yellow("warning: %v", err)
			}
		}
	}()

	fmt.Printf("\nWatching prices every %s. Press Ctrl+C to stop.\n", priceInterval)

	ticker := time.NewTicker(priceInterval)
	defer ticker.Stop()

	displayPrices(a.session.Prices(ctx))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			displayPrices(a.session.Prices(ctx))
		}
	}
}

func displayPrices(prices map[string]decimal.Decimal) {
	if jsonOutput {
		output := make(map[string]string, len(prices))
		for symbol, price := range prices {
			output[symbol] = price.String()
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	symbols := make([]string, 0, len(prices))
	for symbol := range prices {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	fmt.Printf("\n%s\n", color.HiBlackString(time.Now().Format("2006-01-02 15:04:05")))
	for _, symbol := range symbols {
		price := prices[symbol]
		if price.IsZero() {
			fmt.Printf("  %-8s %s\n", color.YellowString(symbol), color.RedString("unavailable"))
			continue
		}
		fmt.Printf("  %-8s $%s\n", color.YellowString(symbol), price.StringFixed(priceDecimals(price)))
	}
}

// priceDecimals keeps small prices readable.
func priceDecimals(price decimal.Decimal) int32 {
	if price.LessThan(decimal.NewFromInt(1)) {
		return 6
	}
	return 2
}
