package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	tx      *gethtypes.Transaction
	pending bool
	receipt *gethtypes.Receipt
	err     error
}

func (f *fakeLookup) TransactionByHash(ctx context.Context, hash common.Hash) (*gethtypes.Transaction, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.tx, f.pending, nil
}

func (f *fakeLookup) TransactionReceipt(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error) {
	return f.receipt, nil
}

func TestGetTransactionInfo(t *testing.T) {
	to := common.HexToAddress("0x068571Ec22C648Fa740F4A9857FA222d7901A4aD")
	tx := gethtypes.NewTransaction(7, to, big.NewInt(1e18), 21000, big.NewInt(3e9), nil)
	ctx := context.Background()

	t.Run("pending", func(t *testing.T) {
		info, err := GetTransactionInfo(ctx, &fakeLookup{tx: tx, pending: true}, tx.Hash().Hex())
		require.NoError(t, err)
		assert.True(t, info.Pending)
		assert.False(t, info.Mined)
		assert.Equal(t, uint64(7), info.Nonce)
		assert.Equal(t, to.Hex(), info.To)
		assert.Equal(t, "1000000000000000000", info.Value)
	})

	t.Run("mined", func(t *testing.T) {
		lookup := &fakeLookup{tx: tx, receipt: &gethtypes.Receipt{
			Status:      gethtypes.ReceiptStatusFailed,
			BlockNumber: big.NewInt(42),
			GasUsed:     20000,
		}}
		info, err := GetTransactionInfo(ctx, lookup, tx.Hash().Hex())
		require.NoError(t, err)
		assert.True(t, info.Mined)
		assert.False(t, info.Success)
		assert.Equal(t, uint64(42), info.BlockNumber)
		assert.Equal(t, uint64(20000), info.GasUsed)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := GetTransactionInfo(ctx, &fakeLookup{err: errors.New("not found")}, tx.Hash().Hex())
		assert.ErrorContains(t, err, "failed to get transaction")
	})
}
