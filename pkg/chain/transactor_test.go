package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"
	"testing"

	"ove-swap/pkg/types"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu          sync.Mutex
	nonce       uint64
	gasPrice    *big.Int
	estimate    uint64
	estimateErr error
	sendErr     error
	status      uint64
	sent        []*gethtypes.Transaction
}

func (b *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(56), nil
}

func (b *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return b.nonce, nil
}

func (b *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return b.gasPrice, nil
}

func (b *fakeBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return b.estimate, b.estimateErr
}

func (b *fakeBackend) SendTransaction(ctx context.Context, tx *gethtypes.Transaction) error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, tx)
	return nil
}

func (b *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error) {
	return &gethtypes.Receipt{TxHash: txHash, Status: b.status, BlockNumber: big.NewInt(100), GasUsed: 21000}, nil
}

func (b *fakeBackend) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return nil, nil
}

type keySigner struct {
	key    *ecdsa.PrivateKey
	refuse error
}

func newKeySigner(t *testing.T) *keySigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &keySigner{key: key}
}

func (s *keySigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *keySigner) SignTx(ctx context.Context, tx *gethtypes.Transaction, chainID *big.Int) (*gethtypes.Transaction, error) {
	if s.refuse != nil {
		return nil, s.refuse
	}
	return gethtypes.SignTx(tx, gethtypes.NewEIP155Signer(chainID), s.key)
}

func newBackend() *fakeBackend {
	return &fakeBackend{nonce: 7, gasPrice: big.NewInt(3_000_000_000), estimate: 100000, status: gethtypes.ReceiptStatusSuccessful}
}

func TestTransactor_Send(t *testing.T) {
	backend := newBackend()
	signer := newKeySigner(t)
	tr := NewTransactor(backend, signer, GasOptions{}, zerolog.Nop())

	tx, err := tr.Send(context.Background(), swapAddr, big.NewInt(1000), []byte{0x01, 0x02})
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(120000), tx.Gas(), "estimate plus 20%")
	assert.Equal(t, "3000000000", tx.GasPrice().String())
	assert.Equal(t, swapAddr, *tx.To())
	assert.Equal(t, "1000", tx.Value().String())

	from, err := gethtypes.Sender(gethtypes.NewEIP155Signer(big.NewInt(56)), tx)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), from)
}

func TestTransactor_GasOverrides(t *testing.T) {
	backend := newBackend()
	backend.estimateErr = errors.New("should not be called")
	limit := uint64(250000)
	price := int64(5_000_000_000)
	tr := NewTransactor(backend, newKeySigner(t), GasOptions{GasLimit: &limit, GasPrice: &price}, zerolog.Nop())

	tx, err := tr.Send(context.Background(), swapAddr, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, limit, tx.Gas())
	assert.Equal(t, "5000000000", tx.GasPrice().String())
	assert.Equal(t, "0", tx.Value().String())
}

func TestTransactor_EstimationFailureSendsNothing(t *testing.T) {
	backend := newBackend()
	backend.estimateErr = errors.New("execution reverted: insufficient liquidity")
	tr := NewTransactor(backend, newKeySigner(t), GasOptions{}, zerolog.Nop())

	_, err := tr.Send(context.Background(), swapAddr, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gas estimation failed")
	assert.Empty(t, backend.sent)
}

func TestTransactor_SignerRefusal(t *testing.T) {
	backend := newBackend()
	signer := newKeySigner(t)
	signer.refuse = errors.New("user rejected transaction")
	tr := NewTransactor(backend, signer, GasOptions{}, zerolog.Nop())

	_, err := tr.Send(context.Background(), swapAddr, nil, nil)
	require.EqualError(t, err, "user rejected transaction")
	assert.Empty(t, backend.sent)
}

func TestTransactor_Wait(t *testing.T) {
	backend := newBackend()
	tr := NewTransactor(backend, newKeySigner(t), GasOptions{}, zerolog.Nop())
	tx, err := tr.Send(context.Background(), swapAddr, nil, nil)
	require.NoError(t, err)

	receipt, err := tr.Wait(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), receipt.BlockNumber.Uint64())

	backend.status = gethtypes.ReceiptStatusFailed
	_, err = tr.Wait(context.Background(), tx)
	assert.ErrorIs(t, err, ErrReverted)
}

type recordingSender struct {
	to    []common.Address
	value []*big.Int
	data  [][]byte
}

func (s *recordingSender) Send(ctx context.Context, to common.Address, value *big.Int, data []byte) (*gethtypes.Transaction, error) {
	s.to = append(s.to, to)
	s.value = append(s.value, value)
	s.data = append(s.data, data)
	return gethtypes.NewTransaction(uint64(len(s.to)), to, value, 0, big.NewInt(0), data), nil
}

func (s *recordingSender) Wait(ctx context.Context, tx *gethtypes.Transaction) (*gethtypes.Receipt, error) {
	return &gethtypes.Receipt{Status: gethtypes.ReceiptStatusSuccessful}, nil
}

func TestSwapContract_PacksEntryPoints(t *testing.T) {
	rec := &recordingSender{}
	c := NewSwapContract(swapAddr, rec)
	ctx := context.Background()
	amount := big.NewInt(5000)

	_, err := c.Approve(ctx, usdtAddr, amount)
	require.NoError(t, err)
	_, err = c.BuyWithNative(ctx, amount)
	require.NoError(t, err)
	_, err = c.Buy(ctx, usdtAddr, amount)
	require.NoError(t, err)
	_, err = c.Sell(ctx, types.NativeAddress, amount)
	require.NoError(t, err)

	require.Len(t, rec.to, 4)
	assert.Equal(t, []common.Address{usdtAddr, swapAddr, swapAddr, swapAddr}, rec.to)

	method, err := ERC20ABI.MethodById(rec.data[0][:4])
	require.NoError(t, err)
	assert.Equal(t, methodApprove, method.Name)
	args, err := method.Inputs.Unpack(rec.data[0][4:])
	require.NoError(t, err)
	assert.Equal(t, swapAddr, args[0].(common.Address))
	assert.Equal(t, "5000", args[1].(*big.Int).String())

	method, err = SwapABI.MethodById(rec.data[1][:4])
	require.NoError(t, err)
	assert.Equal(t, methodBuyNative, method.Name)
	assert.Equal(t, "5000", rec.value[1].String())

	method, err = SwapABI.MethodById(rec.data[2][:4])
	require.NoError(t, err)
	assert.Equal(t, methodBuy, method.Name)
	assert.Nil(t, rec.value[2])

	method, err = SwapABI.MethodById(rec.data[3][:4])
	require.NoError(t, err)
	assert.Equal(t, methodSell, method.Name)
	args, err = method.Inputs.Unpack(rec.data[3][4:])
	require.NoError(t, err)
	assert.Equal(t, types.NativeAddress, args[0].(common.Address))
}
