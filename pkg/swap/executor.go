// Package swap executes swaps against the swap contract: optional ERC20
// approval, the directional swap call, confirmation and error classification.
package swap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"ove-swap/pkg/metrics"
	"ove-swap/pkg/types"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultRefreshDelay = time.Second

var (
	ErrSwapInProgress  = errors.New("a swap is already in progress")
	ErrNotConnected    = errors.New("wallet not connected")
	ErrInvalidAmount   = types.ErrInvalidAmount
	ErrNetworkMismatch = errors.New("connected to the wrong network")
)

// Error is a classified swap failure.
type Error struct {
	Kind    ErrorKind
	Step    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Contract is the write surface of the swap contract. *chain.SwapContract
// satisfies it.
type Contract interface {
	Approve(ctx context.Context, token common.Address, amount *big.Int) (*gethtypes.Transaction, error)
	BuyWithNative(ctx context.Context, amount *big.Int) (*gethtypes.Transaction, error)
	Buy(ctx context.Context, paying common.Address, amount *big.Int) (*gethtypes.Transaction, error)
	Sell(ctx context.Context, counter common.Address, amount *big.Int) (*gethtypes.Transaction, error)
	Wait(ctx context.Context, tx *gethtypes.Transaction) (*gethtypes.Receipt, error)
}

// Account reports whether a signer is available.
type Account interface {
	Connected() bool
}

// NetworkState answers from the last known chain id, without a chain call.
type NetworkState interface {
	WrongNetwork() bool
}

type BalanceRefresher interface {
	RefreshBalances(ctx context.Context)
}

// Request is one user-initiated swap.
type Request struct {
	Pair   types.Pair
	Amount string
	// ExpectedOut is the quoted output shown to the user, used in the
	// success message.
	ExpectedOut string
}

// Result describes a confirmed swap.
type Result struct {
	Request    types.SwapRequest
	AmountIn   string
	AmountOut  string
	ApproveTx  *common.Hash
	SwapTx     common.Hash
	Block      uint64
	GasUsed    uint64
	IsPurchase bool
}

// Message is the user-facing success text.
func (r Result) Message() string {
	from, to := r.Request.Pair.From.Symbol, r.Request.Pair.To.Symbol
	if r.IsPurchase {
		return fmt.Sprintf("Successfully bought %s %s with %s %s", r.AmountOut, to, r.AmountIn, from)
	}
	return fmt.Sprintf("Successfully sold %s %s for %s %s", r.AmountIn, from, r.AmountOut, to)
}

// Event is emitted once per executed swap, success or failure.
type Event struct {
	Result *Result
	Err    *Error
}

func (e Event) Success() bool {
	return e.Err == nil
}

func (e Event) Message() string {
	if e.Err != nil {
		return e.Err.Message
	}
	return e.Result.Message()
}

type Options struct {
	RefreshDelay time.Duration
	Notify       func(Event)
	Metrics      *metrics.Metrics
}

// Executor runs at most one swap at a time.
type Executor struct {
	contract Contract
	registry *types.Registry
	account  Account
	network  NetworkState
	balances BalanceRefresher
	opts     Options
	log      zerolog.Logger

	inFlight atomic.Bool
	pending  atomic.Pointer[types.SwapRequest]
}

func NewExecutor(contract Contract, registry *types.Registry, account Account, network NetworkState, balances BalanceRefresher, opts Options, log zerolog.Logger) *Executor {
	if opts.RefreshDelay < 0 {
		opts.RefreshDelay = 0
	}
	return &Executor{
		contract: contract,
		registry: registry,
		account:  account,
		network:  network,
		balances: balances,
		opts:     opts,
		log:      log.With().Str("component", "swap_executor").Logger(),
	}
}

// Busy reports whether a swap is in flight.
func (e *Executor) Busy() bool {
	return e.inFlight.Load()
}

// Pending returns the in-flight request, or nil.
func (e *Executor) Pending() *types.SwapRequest {
	return e.pending.Load()
}

// Execute runs req to completion. A second call while one is in flight is
// rejected with ErrSwapInProgress. Precondition failures return before any
// chain call; failures after that are returned as *Error. Once a transaction
// is broadcast, cancelling ctx no longer aborts waiting for it.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSwapInProgress
	}
	result, err := e.execute(ctx, req)
	e.pending.Store(nil)
	e.inFlight.Store(false)

	var swapErr *Error
	if errors.As(err, &swapErr) {
		e.emit(Event{Err: swapErr})
	}
	if err != nil {
		return nil, err
	}
	e.emit(Event{Result: result})

	// The swap is released before the delayed refresh.
	e.refreshBalances(ctx)
	return result, nil
}

func (e *Executor) execute(ctx context.Context, req Request) (*Result, error) {
	if e.account == nil || !e.account.Connected() {
		return nil, ErrNotConnected
	}
	if e.network.WrongNetwork() {
		return nil, ErrNetworkMismatch
	}

	from, to := req.Pair.From, req.Pair.To
	amountIn, err := types.ParseUnits(req.Amount, from.Decimals)
	if err != nil {
		return nil, err
	}

	sr := &types.SwapRequest{
		ID:               uuid.NewString(),
		Pair:             req.Pair,
		AmountIn:         amountIn,
		RequiresApproval: !from.IsNative,
		Created:          time.Now(),
	}
	e.pending.Store(sr)

	e.opts.Metrics.SwapStarted()
	log := e.log.With().Str("swap_id", sr.ID).Str("pair", req.Pair.String()).Str("amount_in", amountIn.String()).Logger()
	log.Info().Bool("approval", sr.RequiresApproval).Msg("executing swap")

	result := &Result{
		Request:    *sr,
		AmountIn:   types.FromSmallestUnit(amountIn, from.Decimals).String(),
		AmountOut:  req.ExpectedOut,
		IsPurchase: e.registry.IsPlatform(to),
	}

	if sr.RequiresApproval {
		tx, err := e.contract.Approve(ctx, from.Address, amountIn)
		if err != nil {
			return nil, e.fail(log, "approve", err)
		}
		hash := tx.Hash()
		result.ApproveTx = &hash
		log.Info().Str("hash", hash.Hex()).Msg("approval submitted")

		if _, err := e.contract.Wait(context.WithoutCancel(ctx), tx); err != nil {
			return nil, e.fail(log, "approve_confirm", err)
		}
	}

	var tx *gethtypes.Transaction
	switch {
	case e.registry.IsPlatform(from):
		tx, err = e.contract.Sell(ctx, to.Address, amountIn)
	case from.IsNative:
		tx, err = e.contract.BuyWithNative(ctx, amountIn)
	default:
		tx, err = e.contract.Buy(ctx, from.Address, amountIn)
	}
	if err != nil {
		return nil, e.fail(log, "swap", err)
	}
	result.SwapTx = tx.Hash()
	log.Info().Str("hash", result.SwapTx.Hex()).Msg("swap submitted")

	receipt, err := e.contract.Wait(context.WithoutCancel(ctx), tx)
	if err != nil {
		return nil, e.fail(log, "swap_confirm", err)
	}
	if receipt.BlockNumber != nil {
		result.Block = receipt.BlockNumber.Uint64()
	}
	result.GasUsed = receipt.GasUsed

	e.opts.Metrics.SwapFinished("success")
	log.Info().Uint64("block", result.Block).Msg("swap confirmed")
	return result, nil
}

func (e *Executor) fail(log zerolog.Logger, step string, err error) *Error {
	kind := Classify(err.Error())
	swapErr := &Error{
		Kind:    kind,
		Step:    step,
		Message: Message(kind, err.Error()),
		Err:     err,
	}
	e.opts.Metrics.SwapFinished(kind.String())
	log.Error().Err(err).Str("step", step).Str("kind", kind.String()).Msg("swap failed")
	return swapErr
}

func (e *Executor) emit(ev Event) {
	if e.opts.Notify != nil {
		e.opts.Notify(ev)
	}
}

// refreshBalances runs after confirmation, giving the reading node a moment
// to catch up with the writing one.
func (e *Executor) refreshBalances(ctx context.Context) {
	if e.balances == nil {
		return
	}
	if e.opts.RefreshDelay > 0 {
		t := time.NewTimer(e.opts.RefreshDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
	e.balances.RefreshBalances(ctx)
}
