// Package wallet is a private-key wallet provider. It signs transactions for
// one account, forwards chain calls to the RPC endpoint of the selected
// network and answers network switch/add requests.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"ove-swap/pkg/network"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// Provider error codes (EIP-1193).
const (
	CodeUserRejected      = 4001
	CodeUnsupportedMethod = 4200
)

var ErrNoSigner = errors.New("no private key configured")

// ErrUserRejected is returned when the confirmer declines a signature.
var ErrUserRejected error = &ProviderError{Code: CodeUserRejected, Message: "user rejected transaction"}

// ProviderError carries an EIP-1193 error code. It satisfies rpc.Error.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string  { return e.Message }
func (e *ProviderError) ErrorCode() int { return e.Code }

// Confirmer is asked before every signature. Returning false declines it.
type Confirmer func(ctx context.Context, tx *gethtypes.Transaction, chainID *big.Int) (bool, error)

// Dialer opens a client for an RPC URL.
type Dialer func(ctx context.Context, rawurl string) (*ethclient.Client, error)

type Options struct {
	Confirm Confirmer
	Dial    Dialer
}

// KeyWallet is safe for concurrent use.
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	confirm Confirmer
	dial    Dialer
	log     zerolog.Logger

	mu       sync.RWMutex
	networks map[uint64]network.Descriptor
	client   *ethclient.Client
	rpcURL   string
}

// New connects to initial.RPCURLs[0]. privateKey may be empty for a
// read-only wallet that can quote but not sign.
func New(ctx context.Context, privateKey string, initial network.Descriptor, opts Options, log zerolog.Logger) (*KeyWallet, error) {
	w := &KeyWallet{
		confirm:  opts.Confirm,
		dial:     opts.Dial,
		log:      log.With().Str("component", "wallet").Logger(),
		networks: map[uint64]network.Descriptor{initial.ChainID: initial},
	}
	if w.dial == nil {
		w.dial = ethclient.DialContext
	}

	if privateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		w.key = key
		w.address = crypto.PubkeyToAddress(key.PublicKey)
	}

	if err := w.connect(ctx, initial); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *KeyWallet) connect(ctx context.Context, d network.Descriptor) error {
	if len(d.RPCURLs) == 0 {
		return fmt.Errorf("RPC URL not configured for network %s", d.ChainName)
	}
	client, err := w.dial(ctx, d.RPCURLs[0])
	if err != nil {
		return fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	w.mu.Lock()
	old := w.client
	w.client = client
	w.rpcURL = d.RPCURLs[0]
	w.mu.Unlock()

	if old != nil {
		old.Close()
	}
	w.log.Debug().Str("rpc", d.RPCURLs[0]).Uint64("chain_id", d.ChainID).Msg("connected")
	return nil
}

// Connected reports whether the wallet can sign.
func (w *KeyWallet) Connected() bool {
	return w.key != nil
}

// Address is the signing account, the zero address for a read-only wallet.
func (w *KeyWallet) Address() common.Address {
	return w.address
}

func (w *KeyWallet) RPCURL() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rpcURL
}

// SignTx asks the confirmer, then signs with EIP-155 replay protection.
func (w *KeyWallet) SignTx(ctx context.Context, tx *gethtypes.Transaction, chainID *big.Int) (*gethtypes.Transaction, error) {
	if w.key == nil {
		return nil, ErrNoSigner
	}
	if w.confirm != nil {
		ok, err := w.confirm(ctx, tx, chainID)
		if err != nil {
			return nil, fmt.Errorf("failed to confirm transaction: %w", err)
		}
		if !ok {
			return nil, ErrUserRejected
		}
	}
	signed, err := gethtypes.SignTx(tx, gethtypes.NewEIP155Signer(chainID), w.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// Request handles wallet_switchEthereumChain and wallet_addEthereumChain.
// Switching to a chain the wallet was never told about fails with code 4902.
func (w *KeyWallet) Request(ctx context.Context, method string, params ...interface{}) error {
	switch method {
	case network.MethodSwitchChain:
		var p network.SwitchChainParams
		if err := decodeParam(params, &p); err != nil {
			return err
		}
		id, err := hexutil.DecodeUint64(p.ChainID)
		if err != nil {
			return &ProviderError{Code: -32602, Message: fmt.Sprintf("invalid chainId %q", p.ChainID)}
		}

		w.mu.RLock()
		d, known := w.networks[id]
		w.mu.RUnlock()
		if !known {
			return &ProviderError{Code: network.CodeUnrecognizedChain, Message: fmt.Sprintf("Unrecognized chain ID %q", p.ChainID)}
		}
		return w.connect(ctx, d)

	case network.MethodAddChain:
		var p network.AddChainParams
		if err := decodeParam(params, &p); err != nil {
			return err
		}
		id, err := hexutil.DecodeUint64(p.ChainID)
		if err != nil {
			return &ProviderError{Code: -32602, Message: fmt.Sprintf("invalid chainId %q", p.ChainID)}
		}
		d := network.Descriptor{
			ChainID:        id,
			ChainName:      p.ChainName,
			NativeCurrency: p.NativeCurrency,
			RPCURLs:        p.RPCURLs,
			ExplorerURLs:   p.BlockExplorerURLs,
		}
		if err := w.connect(ctx, d); err != nil {
			return err
		}
		w.mu.Lock()
		w.networks[id] = d
		w.mu.Unlock()
		w.log.Info().Str("chain", d.ChainName).Uint64("chain_id", id).Msg("network added")
		return nil

	default:
		return &ProviderError{Code: CodeUnsupportedMethod, Message: fmt.Sprintf("unsupported method %s", method)}
	}
}

// decodeParam round-trips params[0] through JSON so callers may pass either
// the typed struct or a generic map.
func decodeParam(params []interface{}, out interface{}) error {
	if len(params) == 0 {
		return &ProviderError{Code: -32602, Message: "missing params"}
	}
	raw, err := json.Marshal(params[0])
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ProviderError{Code: -32602, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

func (w *KeyWallet) backend() *ethclient.Client {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.client
}

// Close closes the client connection
func (w *KeyWallet) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client != nil {
		w.client.Close()
		w.client = nil
	}
}

// The methods below forward to the selected network's client.

func (w *KeyWallet) ChainID(ctx context.Context) (*big.Int, error) {
	return w.backend().ChainID(ctx)
}

func (w *KeyWallet) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return w.backend().CallContract(ctx, msg, blockNumber)
}

func (w *KeyWallet) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return w.backend().BalanceAt(ctx, account, blockNumber)
}

func (w *KeyWallet) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return w.backend().CodeAt(ctx, account, blockNumber)
}

func (w *KeyWallet) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return w.backend().PendingNonceAt(ctx, account)
}

func (w *KeyWallet) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return w.backend().SuggestGasPrice(ctx)
}

func (w *KeyWallet) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return w.backend().EstimateGas(ctx, msg)
}

func (w *KeyWallet) SendTransaction(ctx context.Context, tx *gethtypes.Transaction) error {
	return w.backend().SendTransaction(ctx, tx)
}

func (w *KeyWallet) TransactionReceipt(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error) {
	return w.backend().TransactionReceipt(ctx, txHash)
}

func (w *KeyWallet) TransactionByHash(ctx context.Context, hash common.Hash) (*gethtypes.Transaction, bool, error) {
	return w.backend().TransactionByHash(ctx, hash)
}
