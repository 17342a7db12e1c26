package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
)

// TxLookup fetches transactions and receipts. *ethclient.Client satisfies it.
type TxLookup interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*gethtypes.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error)
}

// TxInfo summarizes a transaction and, once mined, its receipt.
type TxInfo struct {
	Hash     string `json:"hash"`
	Nonce    uint64 `json:"nonce"`
	GasPrice string `json:"gas_price"`
	GasLimit uint64 `json:"gas_limit"`
	To       string `json:"to"`
	Value    string `json:"value"`
	Pending  bool   `json:"pending"`

	Mined       bool   `json:"mined"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	GasUsed     uint64 `json:"gas_used,omitempty"`
	Success     bool   `json:"success,omitempty"`
}

// GetTransactionInfo retrieves information about a transaction
func GetTransactionInfo(ctx context.Context, client TxLookup, txHash string) (*TxInfo, error) {
	hash := common.HexToHash(txHash)

	tx, isPending, err := client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	info := &TxInfo{
		Hash:     tx.Hash().Hex(),
		Nonce:    tx.Nonce(),
		GasPrice: tx.GasPrice().String(),
		GasLimit: tx.Gas(),
		Value:    tx.Value().String(),
		Pending:  isPending,
	}
	if tx.To() != nil {
		info.To = tx.To().Hex()
	}

	if isPending {
		return info, nil
	}

	receipt, err := client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}
	info.Mined = true
	info.BlockNumber = receipt.BlockNumber.Uint64()
	info.GasUsed = receipt.GasUsed
	info.Success = receipt.Status == gethtypes.ReceiptStatusSuccessful
	return info, nil
}
