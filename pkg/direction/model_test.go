package direction

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ove-swap/pkg/types"
)

var (
	bnb  = types.Asset{Address: types.NativeAddress, Symbol: "BNB", Decimals: 18, IsNative: true}
	ove  = types.Asset{Address: common.HexToAddress("0x0d5556E58862A21db65B4Aa180da231cfE6140fE"), Symbol: "OVE", Decimals: 18}
	usdt = types.Asset{Address: common.HexToAddress("0x55d398326f99059fF775485246999027B3197955"), Symbol: "USDT", Decimals: 18}
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	reg, err := types.NewRegistry(ove.Address, bnb, ove, usdt)
	require.NoError(t, err)
	return NewModel(reg)
}

func TestModel_DefaultsToBuy(t *testing.T) {
	m := newTestModel(t)
	p := m.Current()
	assert.Equal(t, "BNB", p.From.Symbol)
	assert.Equal(t, "OVE", p.To.Symbol)
}

func TestModel_FlipTwiceRestores(t *testing.T) {
	m := newTestModel(t)
	orig := m.Current()
	v0 := m.Version()

	flipped := m.Flip()
	assert.Equal(t, orig.Flipped(), flipped)
	assert.Greater(t, m.Version(), v0)

	back := m.Flip()
	assert.Equal(t, orig, back)
	assert.Equal(t, v0+2, m.Version())
}

func TestModel_SelectRejectsSameAsset(t *testing.T) {
	m := newTestModel(t)

	err := m.SelectFrom(ove)
	assert.ErrorIs(t, err, ErrSameAsset)
	assert.Equal(t, "BNB", m.Current().From.Symbol, "rejected selection must not mutate state")

	err = m.SelectTo(bnb)
	assert.ErrorIs(t, err, ErrSameAsset)
}

func TestModel_SelectRequiresPlatformLeg(t *testing.T) {
	m := newTestModel(t)
	err := m.SelectTo(usdt)
	assert.ErrorIs(t, err, ErrNoPlatformLeg)

	require.NoError(t, m.SelectFrom(usdt))
	assert.Equal(t, types.Pair{From: usdt, To: ove}, m.Current())
}

func TestModel_SelectUnknown(t *testing.T) {
	m := newTestModel(t)
	eth := types.Asset{Address: common.HexToAddress("0x2170Ed0880ac9A755fd29B2688956BD959F933F8"), Symbol: "ETH", Decimals: 18}
	assert.ErrorIs(t, m.SelectFrom(eth), ErrUnknownAsset)
}

func TestModel_Candidates(t *testing.T) {
	m := newTestModel(t)

	from := m.Candidates(true)
	symbols := make([]string, 0, len(from))
	for _, a := range from {
		symbols = append(symbols, a.Symbol)
	}
	assert.ElementsMatch(t, []string{"BNB", "USDT"}, symbols)

	to := m.Candidates(false)
	require.Len(t, to, 1)
	assert.Equal(t, "OVE", to[0].Symbol)
}

func TestModel_OnChange(t *testing.T) {
	m := newTestModel(t)
	var seen []types.Pair
	m.OnChange(func(p types.Pair) { seen = append(seen, p) })

	m.Flip()
	_ = m.SelectFrom(ove) // already from after flip, no change
	require.Len(t, seen, 1)
	assert.Equal(t, "OVE", seen[0].From.Symbol)
}
