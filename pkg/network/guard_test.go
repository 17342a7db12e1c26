package network

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerError struct {
	code int
	msg  string
}

func (e *providerError) Error() string  { return e.msg }
func (e *providerError) ErrorCode() int { return e.code }

type request struct {
	method string
	params []interface{}
}

type fakeProvider struct {
	chainID  int64
	errs     map[string]error
	requests []request
	// onAdd switches the reported chain, like a wallet that adds and
	// selects the network in one step.
	onAdd int64
}

func (p *fakeProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(p.chainID), nil
}

func (p *fakeProvider) Request(ctx context.Context, method string, params ...interface{}) error {
	p.requests = append(p.requests, request{method: method, params: params})
	if err := p.errs[method]; err != nil {
		return err
	}
	switch method {
	case MethodSwitchChain:
		p.chainID = 56
	case MethodAddChain:
		p.chainID = p.onAdd
	}
	return nil
}

func bsc() Descriptor {
	return Descriptor{
		ChainID:        56,
		ChainName:      "BNB Smart Chain",
		NativeCurrency: Currency{Name: "BNB", Symbol: "BNB", Decimals: 18},
		RPCURLs:        []string{"https://bsc-dataseed.binance.org/"},
		ExplorerURLs:   []string{"https://bscscan.com/"},
	}
}

func TestIsWrongNetwork(t *testing.T) {
	assert.False(t, IsWrongNetwork(56, 56))
	assert.True(t, IsWrongNetwork(97, 56))
	assert.True(t, IsWrongNetwork(0, 56))
}

func TestDescriptor_Params(t *testing.T) {
	d := bsc()
	assert.Equal(t, "0x38", d.ChainIDHex())
	assert.Equal(t, SwitchChainParams{ChainID: "0x38"}, d.SwitchParams())

	add := d.AddParams()
	assert.Equal(t, "0x38", add.ChainID)
	assert.Equal(t, "BNB Smart Chain", add.ChainName)
	assert.Equal(t, 18, add.NativeCurrency.Decimals)
	assert.Equal(t, []string{"https://bscscan.com/"}, add.BlockExplorerURLs)
}

func TestGuard_RefreshAndWrongNetwork(t *testing.T) {
	p := &fakeProvider{chainID: 97}
	g := NewGuard(p, bsc(), zerolog.Nop())

	assert.True(t, g.WrongNetwork(), "unknown chain counts as wrong")

	id, err := g.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(97), id)
	assert.True(t, g.WrongNetwork())
	assert.Empty(t, p.requests)
}

func TestGuard_SwitchNetwork(t *testing.T) {
	p := &fakeProvider{chainID: 1}
	g := NewGuard(p, bsc(), zerolog.Nop())

	require.NoError(t, g.SwitchNetwork(context.Background()))

	require.Len(t, p.requests, 1)
	assert.Equal(t, MethodSwitchChain, p.requests[0].method)
	assert.Equal(t, []interface{}{SwitchChainParams{ChainID: "0x38"}}, p.requests[0].params)
	assert.False(t, g.WrongNetwork())
}

func TestGuard_SwitchFallsBackToAdd(t *testing.T) {
	p := &fakeProvider{
		chainID: 1,
		onAdd:   56,
		errs:    map[string]error{MethodSwitchChain: &providerError{code: CodeUnrecognizedChain, msg: "Unrecognized chain ID"}},
	}
	g := NewGuard(p, bsc(), zerolog.Nop())

	require.NoError(t, g.SwitchNetwork(context.Background()))

	require.Len(t, p.requests, 2)
	assert.Equal(t, MethodAddChain, p.requests[1].method)
	assert.Equal(t, []interface{}{bsc().AddParams()}, p.requests[1].params)
	assert.Equal(t, uint64(56), g.ChainID())
}

func TestGuard_OtherErrorsSurface(t *testing.T) {
	rejected := &providerError{code: 4001, msg: "User rejected the request."}
	p := &fakeProvider{chainID: 1, errs: map[string]error{MethodSwitchChain: rejected}}
	g := NewGuard(p, bsc(), zerolog.Nop())
	_, _ = g.Refresh(context.Background())

	err := g.SwitchNetwork(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, rejected)
	assert.Len(t, p.requests, 1, "no add-network attempt, no retry")
	assert.True(t, g.WrongNetwork())

	plain := errors.New("provider disconnected")
	p = &fakeProvider{chainID: 1, errs: map[string]error{MethodSwitchChain: plain}}
	g = NewGuard(p, bsc(), zerolog.Nop())
	assert.ErrorIs(t, g.SwitchNetwork(context.Background()), plain)
	assert.Len(t, p.requests, 1)
}

func TestGuard_AddFailureSurfaces(t *testing.T) {
	p := &fakeProvider{
		chainID: 1,
		errs: map[string]error{
			MethodSwitchChain: &providerError{code: CodeUnrecognizedChain, msg: "Unrecognized chain ID"},
			MethodAddChain:    &providerError{code: 4001, msg: "User rejected the request."},
		},
	}
	g := NewGuard(p, bsc(), zerolog.Nop())

	err := g.SwitchNetwork(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add network BNB Smart Chain")
	assert.Len(t, p.requests, 2)
}
