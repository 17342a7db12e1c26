// Package session wires the direction model, quoter, executor, network guard
// and chain reader into one object that lives for the whole process.
package session

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"ove-swap/pkg/direction"
	"ove-swap/pkg/metrics"
	"ove-swap/pkg/quote"
	"ove-swap/pkg/swap"
	"ove-swap/pkg/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Balance display precision.
const (
	nativeBalancePlaces   = 3
	platformBalancePlaces = 0
	tokenBalancePlaces    = 4
)

// ChainReader is the read side the session depends on. *chain.Reader
// satisfies it.
type ChainReader interface {
	quote.Pricer
	GetFeeSchedule(ctx context.Context) types.FeeSchedule
	CachedFeeSchedule() types.FeeSchedule
	GetReferencePriceUSD(ctx context.Context, asset types.Asset) decimal.Decimal
	CachedPrice(asset types.Asset) decimal.Decimal
	GetBalance(ctx context.Context, asset types.Asset, account common.Address) *big.Int
}

// NetworkGuard is satisfied by *network.Guard.
type NetworkGuard interface {
	Refresh(ctx context.Context) (uint64, error)
	ChainID() uint64
	WrongNetwork() bool
	SwitchNetwork(ctx context.Context) error
}

// Account is the connected wallet.
type Account interface {
	Connected() bool
	Address() common.Address
}

type Config struct {
	Debounce     time.Duration
	RefreshDelay time.Duration
	SlippageBps  uint16
	Metrics      *metrics.Metrics
	// OnSwap receives every swap success or failure.
	OnSwap func(swap.Event)
}

// AppConnectionContext is constructed once at startup, before the first
// request, and is never torn down.
type AppConnectionContext struct {
	registry  *types.Registry
	reader    ChainReader
	guard     NetworkGuard
	account   Account
	direction *direction.Model
	quoter    *quote.Quoter
	executor  *swap.Executor
	log       zerolog.Logger

	// ctx scopes the debounced pricing calls.
	ctx context.Context

	mu       sync.RWMutex
	amount   string
	balances map[string]types.Balance
}

func New(ctx context.Context, registry *types.Registry, reader ChainReader, guard NetworkGuard, account Account, contract swap.Contract, cfg Config, log zerolog.Logger) *AppConnectionContext {
	s := &AppConnectionContext{
		registry:  registry,
		reader:    reader,
		guard:     guard,
		account:   account,
		direction: direction.NewModel(registry),
		log:       log.With().Str("component", "session").Logger(),
		ctx:       ctx,
		balances:  make(map[string]types.Balance),
	}

	engine := quote.NewEngine(reader, registry, cfg.SlippageBps, log, cfg.Metrics)
	s.quoter = quote.NewQuoter(engine, cfg.Debounce, log, cfg.Metrics)
	s.executor = swap.NewExecutor(contract, registry, account, guard, s, swap.Options{
		RefreshDelay: cfg.RefreshDelay,
		Notify:       cfg.OnSwap,
		Metrics:      cfg.Metrics,
	}, log)

	// A direction change never leaves the previous quote on display.
	s.direction.OnChange(func(types.Pair) {
		s.quoter.Invalidate()
	})
	return s
}

// Connect reads the chain id, then fees, the native price and balances.
func (s *AppConnectionContext) Connect(ctx context.Context) error {
	id, err := s.guard.Refresh(ctx)
	if err != nil {
		return err
	}
	s.log.Info().Uint64("chain_id", id).Bool("wrong_network", s.guard.WrongNetwork()).Msg("connected")

	s.refreshState(ctx)
	return nil
}

func (s *AppConnectionContext) refreshState(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		s.reader.GetFeeSchedule(ctx)
		return nil
	})
	g.Go(func() error {
		s.reader.GetReferencePriceUSD(ctx, s.registry.Native())
		return nil
	})
	g.Go(func() error {
		s.RefreshBalances(ctx)
		return nil
	})
	_ = g.Wait()
}

// SwitchNetwork asks the wallet to move to the required network and reloads
// chain state afterwards.
func (s *AppConnectionContext) SwitchNetwork(ctx context.Context) error {
	if err := s.guard.SwitchNetwork(ctx); err != nil {
		return err
	}
	s.refreshState(ctx)
	s.requote()
	return nil
}

func (s *AppConnectionContext) Registry() *types.Registry {
	return s.registry
}

func (s *AppConnectionContext) Pair() types.Pair {
	return s.direction.Current()
}

func (s *AppConnectionContext) Candidates(forFrom bool) []types.Asset {
	return s.direction.Candidates(forFrom)
}

func (s *AppConnectionContext) Amount() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.amount
}

// SetAmount stores the typed input and schedules a debounced requote.
func (s *AppConnectionContext) SetAmount(amount string) {
	s.mu.Lock()
	s.amount = amount
	s.mu.Unlock()
	s.requote()
}

// Flip swaps the direction. The previous output becomes the new input.
func (s *AppConnectionContext) Flip() types.Pair {
	prev := s.Quote()
	pair := s.direction.Flip()

	next := ""
	if !prev.IsEmpty() && !prev.Failed() {
		next = prev.OutputAmount
	}
	s.SetAmount(next)
	return pair
}

// SelectFrom picks the asset to sell by symbol.
func (s *AppConnectionContext) SelectFrom(symbol string) error {
	asset, ok := s.registry.BySymbol(symbol)
	if !ok {
		return fmt.Errorf("%w: %s", direction.ErrUnknownAsset, symbol)
	}
	if err := s.direction.SelectFrom(asset); err != nil {
		return err
	}
	s.requote()
	return nil
}

// SelectTo picks the asset to buy by symbol.
func (s *AppConnectionContext) SelectTo(symbol string) error {
	asset, ok := s.registry.BySymbol(symbol)
	if !ok {
		return fmt.Errorf("%w: %s", direction.ErrUnknownAsset, symbol)
	}
	if err := s.direction.SelectTo(asset); err != nil {
		return err
	}
	s.requote()
	return nil
}

func (s *AppConnectionContext) requote() {
	native := s.registry.Native()
	s.quoter.Request(s.ctx, quote.Inputs{
		Amount:         s.Amount(),
		Pair:           s.direction.Current(),
		Version:        s.direction.Version(),
		Fees:           s.reader.CachedFeeSchedule(),
		NativePriceUSD: s.reader.CachedPrice(native),
	})
}

// Quote returns the current quote, or the empty quote when the last result
// was computed for a different direction.
func (s *AppConnectionContext) Quote() quote.Quote {
	q := s.quoter.Current()
	if q.Version != s.direction.Version() || q.Pair != s.direction.Current() {
		return quote.Quote{Pair: s.direction.Current(), Version: s.direction.Version()}
	}
	return q
}

// WaitQuote blocks until pending quote requests settle.
func (s *AppConnectionContext) WaitQuote() quote.Quote {
	s.quoter.Wait()
	return s.Quote()
}

func (s *AppConnectionContext) OnQuote(fn func(quote.Quote)) {
	s.quoter.OnUpdate(fn)
}

// Swap executes the current pair and amount. On success the input and the
// quote are cleared.
func (s *AppConnectionContext) Swap(ctx context.Context) (*swap.Result, error) {
	q := s.Quote()
	res, err := s.executor.Execute(ctx, swap.Request{
		Pair:        s.direction.Current(),
		Amount:      s.Amount(),
		ExpectedOut: q.OutputAmount,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.amount = ""
	s.mu.Unlock()
	s.quoter.Invalidate()
	return res, nil
}

// RefreshBalances reloads balances of every registered asset for the
// connected account.
func (s *AppConnectionContext) RefreshBalances(ctx context.Context) {
	if !s.account.Connected() {
		return
	}
	s.RefreshBalancesFor(ctx, s.account.Address())
}

// RefreshBalancesFor reloads balances for any account.
func (s *AppConnectionContext) RefreshBalancesFor(ctx context.Context, account common.Address) map[string]types.Balance {
	assets := s.registry.Assets()
	fresh := make([]types.Balance, len(assets))

	var g errgroup.Group
	for i, a := range assets {
		i, a := i, a
		g.Go(func() error {
			raw := s.reader.GetBalance(ctx, a, account)
			fresh[i] = types.NewBalance(a, raw, s.balancePlaces(a))
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]types.Balance, len(fresh))
	for _, b := range fresh {
		out[b.Symbol] = b
	}
	if account == s.account.Address() {
		s.mu.Lock()
		s.balances = out
		s.mu.Unlock()
	}
	return out
}

func (s *AppConnectionContext) balancePlaces(a types.Asset) int32 {
	switch {
	case a.IsNative:
		return nativeBalancePlaces
	case s.registry.IsPlatform(a):
		return platformBalancePlaces
	default:
		return tokenBalancePlaces
	}
}

// Balances returns a copy of the last loaded balances.
func (s *AppConnectionContext) Balances() map[string]types.Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]types.Balance, len(s.balances))
	for k, v := range s.balances {
		out[k] = v
	}
	return out
}

// Prices reads the USD reference price of the native asset and the
// platform token.
func (s *AppConnectionContext) Prices(ctx context.Context) map[string]decimal.Decimal {
	native, platform := s.registry.Native(), s.registry.Platform()
	var nativePrice, platformPrice decimal.Decimal

	var g errgroup.Group
	g.Go(func() error {
		nativePrice = s.reader.GetReferencePriceUSD(ctx, native)
		return nil
	})
	g.Go(func() error {
		platformPrice = s.reader.GetReferencePriceUSD(ctx, platform)
		return nil
	})
	_ = g.Wait()

	return map[string]decimal.Decimal{
		native.Symbol:   nativePrice,
		platform.Symbol: platformPrice,
	}
}

func (s *AppConnectionContext) Fees(ctx context.Context) types.FeeSchedule {
	return s.reader.GetFeeSchedule(ctx)
}

func (s *AppConnectionContext) ChainID() uint64 {
	return s.guard.ChainID()
}

func (s *AppConnectionContext) Account() Account {
	return s.account
}

// ButtonState is what the primary action should offer.
func (s *AppConnectionContext) ButtonState() ButtonState {
	switch {
	case !s.account.Connected():
		return ButtonConnect
	case s.guard.WrongNetwork():
		return ButtonSwitchNetwork
	case s.executor.Busy():
		return ButtonSwapping
	case quote.IsEmptyInput(s.Amount()):
		return ButtonEnterAmount
	case s.quoter.Busy():
		return ButtonQuoting
	default:
		return ButtonSwap
	}
}

// Busy reports whether a quote or a swap is in progress.
func (s *AppConnectionContext) Busy() bool {
	return s.quoter.Busy() || s.executor.Busy()
}
