// Package quote turns an input amount and trade direction into a fee-aware
// output estimate priced by the swap contract.
package quote

import (
	"context"
	"errors"
	"math/big"
	"time"

	"ove-swap/pkg/metrics"
	"ove-swap/pkg/types"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Display precision.
const (
	platformPlaces = 0
	assetPlaces    = 4
	feePlaces      = 4
	fiatPlaces     = 4
	ratePlaces     = 6
)

var errMalformed = errors.New("malformed pricing response")

// Pricer is the contract's fee-aware pricing surface. *chain.Reader
// satisfies it.
type Pricer interface {
	QuoteBuy(ctx context.Context, paying types.Asset, amountIn *big.Int) (out, fee *big.Int, err error)
	QuoteSell(ctx context.Context, counter types.Asset, amountIn *big.Int) (out, fee *big.Int, err error)
}

// Inputs is everything a quote depends on.
type Inputs struct {
	Amount string
	Pair   types.Pair
	// Version is the direction model version the pair was read under.
	Version        uint64
	Fees           types.FeeSchedule
	NativePriceUSD decimal.Decimal
}

// Quote is a non-binding estimate. The string fields are ready for display;
// they are all empty for the empty quote and "0" after a pricing failure.
type Quote struct {
	Pair    types.Pair `json:"pair"`
	Version uint64     `json:"version"`

	Input   decimal.Decimal `json:"input"`
	Output  decimal.Decimal `json:"output"`
	Fee     decimal.Decimal `json:"fee"`
	FeeFiat decimal.Decimal `json:"fee_fiat"`
	Rate    decimal.Decimal `json:"rate"`

	OutputAmount  string `json:"output_amount"`
	FeeAmount     string `json:"fee_amount"`
	FeeAmountFiat string `json:"fee_amount_fiat"`
	ExchangeRate  string `json:"exchange_rate"`
	MinReceived   string `json:"min_received"`
	FeePercent    string `json:"fee_percent"`
	FeeSymbol     string `json:"fee_symbol"`

	Err error `json:"-"`
}

// IsEmpty reports whether q is the empty quote.
func (q Quote) IsEmpty() bool {
	return q.Err == nil && q.OutputAmount == ""
}

func (q Quote) Failed() bool {
	return q.Err != nil
}

// FeeDisplay shows the fee in USD when a price was known, otherwise in
// native units.
func (q Quote) FeeDisplay() string {
	if q.FeeFiat.IsPositive() {
		return "$" + q.FeeAmountFiat
	}
	if q.FeeAmount == "" {
		return ""
	}
	return q.FeeAmount + " " + q.FeeSymbol
}

func emptyQuote(in Inputs) Quote {
	return Quote{Pair: in.Pair, Version: in.Version}
}

func failedQuote(in Inputs, amount decimal.Decimal, err error) Quote {
	return Quote{
		Pair:          in.Pair,
		Version:       in.Version,
		Input:         amount,
		OutputAmount:  "0",
		FeeAmount:     "0",
		FeeAmountFiat: "0",
		ExchangeRate:  "0",
		MinReceived:   "0",
		Err:           err,
	}
}

// IsEmptyInput reports whether amount maps to the empty quote: blank,
// unparsable or not strictly positive.
func IsEmptyInput(amount string) bool {
	d, err := types.ParseAmount(amount)
	return err != nil || !d.IsPositive()
}

// Engine computes quotes. It holds no mutable state.
type Engine struct {
	pricer      Pricer
	registry    *types.Registry
	slippageBps uint16
	log         zerolog.Logger
	metrics     *metrics.Metrics
}

func NewEngine(pricer Pricer, registry *types.Registry, slippageBps uint16, log zerolog.Logger, m *metrics.Metrics) *Engine {
	if slippageBps > 10000 {
		slippageBps = 10000
	}
	return &Engine{
		pricer:      pricer,
		registry:    registry,
		slippageBps: slippageBps,
		log:         log.With().Str("component", "quote_engine").Logger(),
		metrics:     m,
	}
}

// Compute prices in.Amount along in.Pair. Pricing failures come back as a
// failed quote, never as a panic or a separate error.
func (e *Engine) Compute(ctx context.Context, in Inputs) Quote {
	amount, err := types.ParseAmount(in.Amount)
	if err != nil || !amount.IsPositive() {
		return emptyQuote(in)
	}

	from, to := in.Pair.From, in.Pair.To
	amountIn, err := types.ToSmallestUnit(amount, from.Decimals)
	if err != nil {
		e.log.Warn().Err(err).Str("pair", in.Pair.String()).Msg("amount out of range")
		return failedQuote(in, amount, err)
	}
	if amountIn.Sign() <= 0 {
		return emptyQuote(in)
	}
	// Digits beyond the asset's precision never reach the contract.
	amount = types.FromSmallestUnit(amountIn, from.Decimals)

	started := time.Now()
	var outRaw, feeRaw *big.Int
	if e.registry.IsPlatform(from) {
		outRaw, feeRaw, err = e.pricer.QuoteSell(ctx, to, amountIn)
	} else {
		outRaw, feeRaw, err = e.pricer.QuoteBuy(ctx, from, amountIn)
	}
	if err == nil && (outRaw == nil || feeRaw == nil || outRaw.Sign() < 0 || feeRaw.Sign() < 0) {
		err = errMalformed
	}
	e.metrics.ObserveQuote(started, err)
	if err != nil {
		e.log.Warn().Err(err).Str("pair", in.Pair.String()).Str("amount", amount.String()).Msg("pricing call failed")
		return failedQuote(in, amount, err)
	}

	native := e.registry.Native()
	output := types.FromSmallestUnit(outRaw, to.Decimals)
	fee := types.FromSmallestUnit(feeRaw, native.Decimals)

	places := int32(assetPlaces)
	feePercent := in.Fees.SellPercent()
	if e.registry.IsPlatform(to) {
		places = platformPlaces
		feePercent = in.Fees.BuyPercent()
	}

	feeFiat := decimal.Zero
	if fee.IsPositive() && in.NativePriceUSD.IsPositive() {
		feeFiat = fee.Mul(in.NativePriceUSD).Round(fiatPlaces)
	}

	rate := output.Div(amount).Round(ratePlaces)

	tolerance := decimal.New(int64(10000-int(e.slippageBps)), -4)
	minReceived := output.Mul(tolerance)

	q := Quote{
		Pair:          in.Pair,
		Version:       in.Version,
		Input:         amount,
		Output:        output,
		Fee:           fee,
		FeeFiat:       feeFiat,
		Rate:          rate,
		OutputAmount:  output.StringFixed(places),
		FeeAmount:     fee.StringFixed(feePlaces),
		FeeAmountFiat: "0",
		ExchangeRate:  rate.StringFixed(ratePlaces),
		MinReceived:   minReceived.StringFixed(assetPlaces),
		FeePercent:    feePercent,
		FeeSymbol:     native.Symbol,
	}
	if feeFiat.IsPositive() {
		q.FeeAmountFiat = feeFiat.StringFixed(fiatPlaces)
	}
	return q
}
