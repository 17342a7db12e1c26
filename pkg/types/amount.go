package types

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// MaxUnitBits is the width of an EVM uint256. Larger values would be
// truncated by the ABI encoder.
const MaxUnitBits = 256

// maxUnitDigits is the decimal length of 2^256-1.
const maxUnitDigits = 78

// ParseAmount parses a user-facing decimal string. Empty input is rejected
// with ErrInvalidAmount so callers can map it to the empty quote.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// ToSmallestUnit scales amount by 10^decimals. Digits beyond the asset's
// precision are truncated toward zero. Results that do not fit a uint256 are
// rejected with ErrInvalidAmount; the digit count is checked before scaling so
// inputs like "1e50000000" never materialise.
func ToSmallestUnit(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsZero() {
		return new(big.Int), nil
	}
	digits := int64(amount.NumDigits()) + int64(amount.Exponent()) + int64(decimals)
	if digits > maxUnitDigits {
		return nil, fmt.Errorf("%w: amount too large", ErrInvalidAmount)
	}
	if digits <= 0 {
		// below one smallest unit
		return new(big.Int), nil
	}
	raw := amount.Shift(decimals).Truncate(0).BigInt()
	if raw.BitLen() > MaxUnitBits {
		return nil, fmt.Errorf("%w: amount too large", ErrInvalidAmount)
	}
	return raw, nil
}

// FromSmallestUnit converts an on-chain integer amount to a decimal.
func FromSmallestUnit(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -decimals)
}

// ParseUnits parses s and converts it to smallest units, rejecting values <= 0.
func ParseUnits(s string, decimals int32) (*big.Int, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return nil, err
	}
	raw, err := ToSmallestUnit(d, decimals)
	if err != nil {
		return nil, err
	}
	if raw.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidAmount)
	}
	return raw, nil
}
