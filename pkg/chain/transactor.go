package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

// ErrReverted is returned when a mined transaction has a failed status.
var ErrReverted = errors.New("execution reverted")

// Backend is the write side of an Ethereum client. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *gethtypes.Transaction) error
}

// Signer signs transactions for one account. A signer may refuse to sign,
// e.g. when the user declines a confirmation prompt.
type Signer interface {
	Address() common.Address
	SignTx(ctx context.Context, tx *gethtypes.Transaction, chainID *big.Int) (*gethtypes.Transaction, error)
}

type GasOptions struct {
	GasLimit *uint64
	GasPrice *int64
}

// Transactor builds, signs and broadcasts legacy transactions and waits for
// their receipts.
type Transactor struct {
	backend Backend
	signer  Signer
	gas     GasOptions
	log     zerolog.Logger
}

func NewTransactor(backend Backend, signer Signer, gas GasOptions, log zerolog.Logger) *Transactor {
	return &Transactor{
		backend: backend,
		signer:  signer,
		gas:     gas,
		log:     log.With().Str("component", "transactor").Logger(),
	}
}

func (t *Transactor) From() common.Address {
	return t.signer.Address()
}

// Send builds a transaction calling to with data and value, signs it and
// broadcasts it.
func (t *Transactor) Send(ctx context.Context, to common.Address, value *big.Int, data []byte) (*gethtypes.Transaction, error) {
	from := t.signer.Address()
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := t.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := t.gasPrice(ctx)
	if err != nil {
		return nil, err
	}

	gasLimit, err := t.gasLimit(ctx, ethereum.CallMsg{From: from, To: &to, Value: value, Data: data})
	if err != nil {
		return nil, err
	}

	chainID, err := t.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	tx := gethtypes.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signed, err := t.signer.SignTx(ctx, tx, chainID)
	if err != nil {
		return nil, err
	}

	if err := t.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	t.log.Info().
		Str("hash", signed.Hash().Hex()).
		Str("to", to.Hex()).
		Str("value", value.String()).
		Uint64("nonce", nonce).
		Msg("transaction broadcast")
	return signed, nil
}

// Wait blocks until tx is mined. A receipt with a failed status is reported
// as ErrReverted.
func (t *Transactor) Wait(ctx context.Context, tx *gethtypes.Transaction) (*gethtypes.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, t.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != gethtypes.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("transaction %s: %w", tx.Hash().Hex(), ErrReverted)
	}
	t.log.Info().
		Str("hash", tx.Hash().Hex()).
		Uint64("block", receipt.BlockNumber.Uint64()).
		Uint64("gas_used", receipt.GasUsed).
		Msg("transaction confirmed")
	return receipt, nil
}

func (t *Transactor) gasPrice(ctx context.Context) (*big.Int, error) {
	if t.gas.GasPrice != nil {
		return big.NewInt(*t.gas.GasPrice), nil
	}
	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return gasPrice, nil
}

// gasLimit estimates with a 20% buffer unless a limit is configured. An
// estimation failure is returned since it usually means the call reverts.
func (t *Transactor) gasLimit(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if t.gas.GasLimit != nil {
		return *t.gas.GasLimit, nil
	}
	estimated, err := t.backend.EstimateGas(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("gas estimation failed: %w", err)
	}
	return estimated * 120 / 100, nil
}
