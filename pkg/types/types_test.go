package types

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPlatform = common.HexToAddress("0x0d5556E58862A21db65B4Aa180da231cfE6140fE")
	testUSDT     = common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")
)

func testAssets() []Asset {
	return []Asset{
		{Address: NativeAddress, Symbol: "BNB", Decimals: 18, IsNative: true},
		{Address: testPlatform, Symbol: "OVE", Decimals: 18},
		{Address: testUSDT, Symbol: "USDT", Decimals: 18},
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(testPlatform, testAssets()...)
	require.NoError(t, err)

	assert.Equal(t, "BNB", r.Native().Symbol)
	assert.Equal(t, "OVE", r.Platform().Symbol)
	assert.True(t, r.IsPlatform(r.Platform()))
	assert.False(t, r.IsPlatform(r.Native()))
	assert.Len(t, r.Assets(), 3)

	a, ok := r.BySymbol(" usdt ")
	require.True(t, ok)
	assert.Equal(t, testUSDT, a.Address)

	_, ok = r.BySymbol("ETH")
	assert.False(t, ok)

	a, ok = r.ByAddress(NativeAddress)
	require.True(t, ok)
	assert.True(t, a.IsNative)
}

func TestNewRegistry_Validation(t *testing.T) {
	base := testAssets()

	_, err := NewRegistry(testPlatform, base[0])
	assert.ErrorIs(t, err, ErrRegistryTooSmall)

	_, err = NewRegistry(testPlatform, base[1], base[2])
	assert.ErrorIs(t, err, ErrNativeCount)

	badNative := base[0]
	badNative.Address = common.HexToAddress("0x01")
	_, err = NewRegistry(testPlatform, badNative, base[1])
	assert.ErrorIs(t, err, ErrNativeAddress)

	_, err = NewRegistry(common.HexToAddress("0x02"), base...)
	assert.ErrorIs(t, err, ErrPlatformNotListed)

	dup := base[2]
	dup.Symbol = "ove"
	_, err = NewRegistry(testPlatform, base[0], base[1], dup)
	assert.Error(t, err)
}

func TestAmountConversions(t *testing.T) {
	d, err := ParseAmount("1.5")
	require.NoError(t, err)
	raw, err := ToSmallestUnit(d, 18)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", raw.String())

	// excess precision truncates
	d, err = ParseAmount("0.1234567")
	require.NoError(t, err)
	raw, err = ToSmallestUnit(d, 6)
	require.NoError(t, err)
	assert.Equal(t, "123456", raw.String())

	d, err = ParseAmount("1e-50000000")
	require.NoError(t, err)
	raw, err = ToSmallestUnit(d, 18)
	require.NoError(t, err)
	assert.Zero(t, raw.Sign())

	back := FromSmallestUnit(big.NewInt(1_500_000), 6)
	assert.True(t, back.Equal(decimal.RequireFromString("1.5")))

	_, err = ParseAmount("")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseAmount("abc")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseUnits("0", 18)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseUnits("-1", 18)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	raw, err = ParseUnits("2", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), raw.Int64())
}

func TestParseUnits_Uint256Bound(t *testing.T) {
	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	raw, err := ParseUnits(maxUint256.String(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, raw.Cmp(maxUint256))

	overflow := new(big.Int).Add(maxUint256, big.NewInt(1))
	tests := []struct {
		name     string
		amount   string
		decimals int32
	}{
		{"2^256", overflow.String(), 0},
		// 78 digits once scaled, but above 2^256-1
		{"scaled past uint256", "115792089237316195423570985008687907853269984665640564039458", 18},
		{"79 digits", "1e60", 18},
		{"huge exponent", "1e10000000", 18},
		{"huger exponent", "1e50000000", 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			_, err := ParseUnits(tt.amount, tt.decimals)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.Less(t, time.Since(start), time.Second)
		})
	}
}

func TestFeeSchedulePercent(t *testing.T) {
	f := FeeSchedule{BuyFeeBps: 50, SellFeeBps: 125}
	assert.Equal(t, "0.5", f.BuyPercent())
	assert.Equal(t, "1.25", f.SellPercent())
	assert.Equal(t, "0", FeeSchedule{}.BuyPercent())
}

func TestNewBalance(t *testing.T) {
	native := testAssets()[0]
	raw, _ := new(big.Int).SetString("1234567000000000000", 10)

	b := NewBalance(native, raw, 3)
	assert.Equal(t, "1.235 BNB", b.Display)
	assert.Equal(t, raw.String(), b.Raw.String())

	empty := NewBalance(native, nil, 0)
	assert.Equal(t, "0 BNB", empty.Display)
}

func TestPairAndAddress(t *testing.T) {
	as := testAssets()
	p := Pair{From: as[0], To: as[1]}
	assert.True(t, p.Valid())
	assert.Equal(t, p, p.Flipped().Flipped())
	assert.Equal(t, "BNB→OVE", p.String())
	assert.False(t, Pair{From: as[1], To: as[1]}.Valid())

	assert.True(t, strings.EqualFold("0x0d55...40fe", ShortenAddress(testPlatform)))
}
