package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"ove-swap/pkg/metrics"
	"ove-swap/pkg/types"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// PriceDecimals is the fixed-point precision of the contract's USD price feed.
const PriceDecimals = 8

const DefaultReadTimeout = 30 * time.Second

var (
	ErrEmptyResult  = errors.New("empty contract result")
	ErrInvalidPrice = errors.New("price feed returned a non-positive price")
)

// Caller is the read side of an Ethereum client. *ethclient.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// ReadError is delivered on the Reader's error channel whenever a query fell
// back to a cached or default value.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

type ReaderConfig struct {
	Contract common.Address
	Timeout  time.Duration
	// FallbackNativePrice is returned for the native asset until a price
	// has been read successfully.
	FallbackNativePrice decimal.Decimal
}

type balanceKey struct {
	asset   common.Address
	account common.Address
}

// Reader queries the swap contract and the connected network. The soft
// getters never return errors: on failure they hand back the last good value
// (or a default) and report the failure on Errors().
type Reader struct {
	client   Caller
	registry *types.Registry
	cfg      ReaderConfig
	log      zerolog.Logger
	metrics  *metrics.Metrics

	fees     atomic.Pointer[types.FeeSchedule]
	chainID  atomic.Uint64
	prices   sync.Map // common.Address -> decimal.Decimal
	balances sync.Map // balanceKey -> *big.Int

	errs chan error
}

func NewReader(client Caller, registry *types.Registry, cfg ReaderConfig, log zerolog.Logger, m *metrics.Metrics) *Reader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultReadTimeout
	}
	return &Reader{
		client:   client,
		registry: registry,
		cfg:      cfg,
		log:      log.With().Str("component", "chain_reader").Logger(),
		metrics:  m,
		errs:     make(chan error, 32),
	}
}

// Errors streams soft failures. Failures are dropped when nobody drains it.
func (r *Reader) Errors() <-chan error {
	return r.errs
}

func (r *Reader) Registry() *types.Registry {
	return r.registry
}

func (r *Reader) report(op string, err error) {
	r.log.Warn().Err(err).Str("op", op).Msg("chain read failed, using last known value")
	r.metrics.ReadFailed(op)
	select {
	case r.errs <- &ReadError{Op: op, Err: err}:
	default:
	}
}

// GetFeeSchedule reads both fee getters concurrently.
func (r *Reader) GetFeeSchedule(ctx context.Context) types.FeeSchedule {
	var buy, sell *big.Int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := r.callUint(gctx, SwapABI, r.cfg.Contract, methodFeeBuy)
		buy = v
		return err
	})
	g.Go(func() error {
		v, err := r.callUint(gctx, SwapABI, r.cfg.Contract, methodFeeSell)
		sell = v
		return err
	})

	if err := g.Wait(); err != nil {
		r.report("fee_schedule", err)
		return r.CachedFeeSchedule()
	}

	fees := types.FeeSchedule{BuyFeeBps: clampBps(buy), SellFeeBps: clampBps(sell)}
	r.fees.Store(&fees)
	return fees
}

// CachedFeeSchedule returns the last schedule read, or zero fees.
func (r *Reader) CachedFeeSchedule() types.FeeSchedule {
	if f := r.fees.Load(); f != nil {
		return *f
	}
	return types.FeeSchedule{}
}

func clampBps(v *big.Int) uint16 {
	if !v.IsUint64() || v.Uint64() > 10000 {
		return 10000
	}
	return uint16(v.Uint64())
}

// GetReferencePriceUSD reads the USD price of asset from the contract's feed.
func (r *Reader) GetReferencePriceUSD(ctx context.Context, asset types.Asset) decimal.Decimal {
	var (
		raw *big.Int
		err error
	)
	if r.registry.IsPlatform(asset) {
		raw, err = r.callUint(ctx, SwapABI, r.cfg.Contract, methodPlatformPrice)
	} else {
		raw, err = r.callUint(ctx, SwapABI, r.cfg.Contract, methodTokenPriceUSD, asset.Address)
	}
	if err == nil && raw.Sign() <= 0 {
		err = ErrInvalidPrice
	}
	if err != nil {
		r.report("price_"+asset.Symbol, err)
		return r.CachedPrice(asset)
	}

	price := types.FromSmallestUnit(raw, PriceDecimals)
	r.prices.Store(asset.Address, price)
	r.metrics.SetPrice(asset.Symbol, price.InexactFloat64())
	return price
}

// CachedPrice returns the last price read for asset without touching the
// network. The native asset defaults to the configured fallback price.
func (r *Reader) CachedPrice(asset types.Asset) decimal.Decimal {
	if v, ok := r.prices.Load(asset.Address); ok {
		return v.(decimal.Decimal)
	}
	if asset.IsNative {
		return r.cfg.FallbackNativePrice
	}
	return decimal.Zero
}

// GetBalance returns account's balance of asset in smallest units.
func (r *Reader) GetBalance(ctx context.Context, asset types.Asset, account common.Address) *big.Int {
	var (
		bal *big.Int
		err error
	)
	if asset.IsNative {
		cctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		bal, err = r.client.BalanceAt(cctx, account, nil)
		cancel()
		if err != nil {
			err = fmt.Errorf("failed to get balance: %w", err)
		}
	} else {
		bal, err = r.callUint(ctx, ERC20ABI, asset.Address, methodBalanceOf, account)
	}

	key := balanceKey{asset: asset.Address, account: account}
	if err != nil {
		r.report("balance_"+asset.Symbol, err)
		if v, ok := r.balances.Load(key); ok {
			return new(big.Int).Set(v.(*big.Int))
		}
		return new(big.Int)
	}

	r.balances.Store(key, new(big.Int).Set(bal))
	return bal
}

// GetChainID returns the connected network's chain id, 0 if it was never
// read successfully.
func (r *Reader) GetChainID(ctx context.Context) uint64 {
	cctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	id, err := r.client.ChainID(cctx)
	if err != nil {
		r.report("chain_id", fmt.Errorf("failed to get chain id: %w", err))
		return r.chainID.Load()
	}
	r.chainID.Store(id.Uint64())
	return id.Uint64()
}

// QuoteBuy prices buying the platform token with amountIn of paying.
// Unlike the soft getters, pricing failures are returned.
func (r *Reader) QuoteBuy(ctx context.Context, paying types.Asset, amountIn *big.Int) (out, fee *big.Int, err error) {
	return r.quote(ctx, methodQuoteBuy, paying.Address, amountIn)
}

// QuoteSell prices selling amountIn of the platform token for counter.
func (r *Reader) QuoteSell(ctx context.Context, counter types.Asset, amountIn *big.Int) (out, fee *big.Int, err error) {
	return r.quote(ctx, methodQuoteSell, counter.Address, amountIn)
}

func (r *Reader) quote(ctx context.Context, method string, asset common.Address, amountIn *big.Int) (*big.Int, *big.Int, error) {
	res, err := r.call(ctx, SwapABI, r.cfg.Contract, method, asset, amountIn)
	if err != nil {
		return nil, nil, err
	}
	if len(res) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 return values, got %d", method, len(res))
	}
	out, ok1 := res[0].(*big.Int)
	fee, ok2 := res[1].(*big.Int)
	if !ok1 || !ok2 {
		return nil, nil, fmt.Errorf("%s: malformed return values", method)
	}
	return out, fee, nil
}

func (r *Reader) callUint(ctx context.Context, contractABI abi.ABI, to common.Address, method string, args ...interface{}) (*big.Int, error) {
	res, err := r.call(ctx, contractABI, to, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := res[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected return type %T", method, res[0])
	}
	return v, nil
}

func (r *Reader) call(ctx context.Context, contractABI abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	out, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", method, ErrEmptyResult)
	}

	res, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%s: %w", method, ErrEmptyResult)
	}
	return res, nil
}
