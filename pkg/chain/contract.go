package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Sender broadcasts calls and waits for them. *Transactor satisfies it.
type Sender interface {
	Send(ctx context.Context, to common.Address, value *big.Int, data []byte) (*gethtypes.Transaction, error)
	Wait(ctx context.Context, tx *gethtypes.Transaction) (*gethtypes.Receipt, error)
}

// SwapContract packs the state-changing entry points of the swap contract
// and of ERC20 counter-assets.
type SwapContract struct {
	address common.Address
	sender  Sender
}

func NewSwapContract(address common.Address, sender Sender) *SwapContract {
	return &SwapContract{address: address, sender: sender}
}

func (c *SwapContract) Address() common.Address {
	return c.address
}

// Approve lets the swap contract spend amount of token.
func (c *SwapContract) Approve(ctx context.Context, token common.Address, amount *big.Int) (*gethtypes.Transaction, error) {
	data, err := ERC20ABI.Pack(methodApprove, c.address, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack approve data: %w", err)
	}
	return c.sender.Send(ctx, token, nil, data)
}

// BuyWithNative buys the platform token, attaching amount as value.
func (c *SwapContract) BuyWithNative(ctx context.Context, amount *big.Int) (*gethtypes.Transaction, error) {
	data, err := SwapABI.Pack(methodBuyNative)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", methodBuyNative, err)
	}
	return c.sender.Send(ctx, c.address, amount, data)
}

// Buy buys the platform token paying amount of an ERC20 counter-asset.
func (c *SwapContract) Buy(ctx context.Context, paying common.Address, amount *big.Int) (*gethtypes.Transaction, error) {
	data, err := SwapABI.Pack(methodBuy, paying, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", methodBuy, err)
	}
	return c.sender.Send(ctx, c.address, nil, data)
}

// Sell sells amount of the platform token for counter.
func (c *SwapContract) Sell(ctx context.Context, counter common.Address, amount *big.Int) (*gethtypes.Transaction, error) {
	data, err := SwapABI.Pack(methodSell, counter, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", methodSell, err)
	}
	return c.sender.Send(ctx, c.address, nil, data)
}

func (c *SwapContract) Wait(ctx context.Context, tx *gethtypes.Transaction) (*gethtypes.Receipt, error) {
	return c.sender.Wait(ctx, tx)
}
