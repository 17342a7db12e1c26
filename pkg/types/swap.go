package types

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Pair is a trade direction. From and To never point at the same asset.
type Pair struct {
	From Asset `json:"from"`
	To   Asset `json:"to"`
}

// Flipped returns the pair with both sides swapped.
func (p Pair) Flipped() Pair {
	return Pair{From: p.To, To: p.From}
}

func (p Pair) Valid() bool {
	return !p.From.Equal(p.To)
}

func (p Pair) String() string {
	return p.From.Symbol + "→" + p.To.Symbol
}

// FeeSchedule holds the contract's protocol fees in basis points.
type FeeSchedule struct {
	BuyFeeBps  uint16 `json:"buy_fee_bps"`
	SellFeeBps uint16 `json:"sell_fee_bps"`
}

// BuyPercent renders the buy fee as a percentage, e.g. 50 bps -> "0.5".
func (f FeeSchedule) BuyPercent() string {
	return decimal.New(int64(f.BuyFeeBps), -2).String()
}

func (f FeeSchedule) SellPercent() string {
	return decimal.New(int64(f.SellFeeBps), -2).String()
}

// Balance is a wallet balance for one asset.
type Balance struct {
	Symbol    string          `json:"symbol"`
	Raw       *big.Int        `json:"raw"`
	Formatted decimal.Decimal `json:"formatted"`
	Display   string          `json:"display"`
}

// NewBalance formats raw for display with the given number of fractional digits.
func NewBalance(asset Asset, raw *big.Int, places int32) Balance {
	if raw == nil {
		raw = new(big.Int)
	}
	formatted := FromSmallestUnit(raw, asset.Decimals)
	return Balance{
		Symbol:    asset.Symbol,
		Raw:       new(big.Int).Set(raw),
		Formatted: formatted,
		Display:   formatted.StringFixed(places) + " " + asset.Symbol,
	}
}

// SwapRequest lives for exactly one execution attempt.
type SwapRequest struct {
	ID               string    `json:"id"`
	Pair             Pair      `json:"pair"`
	AmountIn         *big.Int  `json:"amount_in"`
	RequiresApproval bool      `json:"requires_approval"`
	Created          time.Time `json:"created"`
}
