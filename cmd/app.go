package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"ove-swap/config"
	"ove-swap/pkg/chain"
	"ove-swap/pkg/logging"
	"ove-swap/pkg/metrics"
	"ove-swap/pkg/network"
	"ove-swap/pkg/session"
	"ove-swap/pkg/types"
	"ove-swap/pkg/wallet"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	metrics  *metrics.Metrics
	registry *types.Registry
	wallet   *wallet.KeyWallet
	reader   *chain.Reader
	guard    *network.Guard
	session  *session.AppConnectionContext
}

func newApp(ctx context.Context, requireSigner bool) (*app, error) {
	cfg, err := config.Load(config.New())
	if err != nil {
		return nil, err
	}
	if requireSigner {
		if err := cfg.RequireSigner(); err != nil {
			return nil, err
		}
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log := logging.New(level, jsonOutput)

	registry, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to build asset registry: %w", err)
	}

	confirmer, err := signingConfirmer(assumeYes, jsonOutput, confirmSignature(registry))
	if err != nil && requireSigner {
		return nil, err
	}
	w, err := wallet.New(ctx, cfg.PrivateKey, cfg.Network(), wallet.Options{Confirm: confirmer}, log)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	reader := chain.NewReader(w, registry, chain.ReaderConfig{
		Contract:            cfg.SwapContract,
		Timeout:             cfg.ReadTimeout,
		FallbackNativePrice: cfg.FallbackPriceUSD,
	}, log, m)

	transactor := chain.NewTransactor(w, w, chain.GasOptions{
		GasLimit: cfg.GasLimit,
		GasPrice: cfg.GasPrice,
	}, log)
	contract := chain.NewSwapContract(cfg.SwapContract, transactor)
	guard := network.NewGuard(w, cfg.Network(), log)

	sess := session.New(ctx, registry, reader, guard, w, contract, session.Config{
		Debounce:     cfg.QuoteDebounce,
		RefreshDelay: cfg.RefreshDelay,
		SlippageBps:  cfg.SlippageBps,
		Metrics:      m,
	}, log)

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		registry: registry,
		wallet:   w,
		reader:   reader,
		guard:    guard,
		session:  sess,
	}, nil
}

func (a *app) Close() {
	a.wallet.Close()
}

// mustApp builds the app and connects the session, exiting on failure.
func mustApp(ctx context.Context, requireSigner bool, what string) *app {
	a, err := newApp(ctx, requireSigner)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	err = withSpinner(fmt.Sprintf(" %s...", what), func() error {
		return a.session.Connect(ctx)
	})
	if err != nil {
		a.Close()
		printError(fmt.Errorf("failed to connect: %w", err))
		os.Exit(1)
	}
	return a
}

// withSpinner runs fn behind a spinner unless output is JSON.
func withSpinner(suffix string, fn func() error) error {
	if jsonOutput {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = suffix
	s.Start()
	defer s.Stop()
	return fn()
}

var errConfirmationRequired = errors.New("--json cannot prompt for confirmation. Pass --yes to sign transactions without prompting")

// signingConfirmer picks how signatures are confirmed. --yes signs without
// asking. JSON output cannot prompt, so without --yes every signature is
// refused and errConfirmationRequired is returned for callers that need to sign.
func signingConfirmer(yes, jsonMode bool, prompt wallet.Confirmer) (wallet.Confirmer, error) {
	switch {
	case yes:
		return nil, nil
	case jsonMode:
		refuse := func(ctx context.Context, tx *gethtypes.Transaction, chainID *big.Int) (bool, error) {
			return false, errConfirmationRequired
		}
		return refuse, errConfirmationRequired
	default:
		return prompt, nil
	}
}

// confirmSignature prompts before the wallet signs anything.
func confirmSignature(registry *types.Registry) wallet.Confirmer {
	return func(ctx context.Context, tx *gethtypes.Transaction, chainID *big.Int) (bool, error) {
		fmt.Println()
		color.Yellow("Signature requested")
		if tx.To() != nil {
			fmt.Printf("  To:        %s\n", color.CyanString(tx.To().Hex()))
		}
		if tx.Value().Sign() > 0 {
			native := registry.Native()
			fmt.Printf("  Value:     %s %s\n", types.FromSmallestUnit(tx.Value(), native.Decimals), native.Symbol)
		}
		fmt.Printf("  Gas limit: %d\n", tx.Gas())
		fmt.Printf("  Chain ID:  %s\n", chainID)
		return confirm("Sign and send this transaction?"), nil
	}
}

// ensureNetwork offers the switch remediation when connected to the wrong
// network. It returns false when the user stays on the wrong network.
func ensureNetwork(ctx context.Context, a *app) bool {
	if !a.guard.WrongNetwork() {
		return true
	}
	required := a.guard.Required()
	color.Yellow("\nConnected to chain %d, but %s (chain %d) is required.", a.guard.ChainID(), required.ChainName, required.ChainID)
	if !assumeYes && !confirm(fmt.Sprintf("Switch to %s?", required.ChainName)) {
		return false
	}
	if err := a.session.SwitchNetwork(ctx); err != nil {
		printError(err)
		return false
	}
	return !a.guard.WrongNetwork()
}

// applyPair moves the session's direction to pair, flipping first when the
// requested sides overlap the current ones in reverse.
func applyPair(s *session.AppConnectionContext, pair types.Pair) error {
	cur := s.Pair()
	if cur == pair {
		return nil
	}
	if cur.From.Equal(pair.To) || cur.To.Equal(pair.From) {
		cur = s.Flip()
	}
	if !cur.From.Equal(pair.From) {
		if err := s.SelectFrom(pair.From.Symbol); err != nil {
			return err
		}
	}
	if !s.Pair().To.Equal(pair.To) {
		if err := s.SelectTo(pair.To.Symbol); err != nil {
			return err
		}
	}
	return nil
}

func parseAccount(value string, a *app) (common.Address, error) {
	if value == "" {
		if !a.wallet.Connected() {
			return common.Address{}, errors.New("no account given. Pass --account or configure private_key")
		}
		return a.wallet.Address(), nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid account address: %s", value)
	}
	return common.HexToAddress(value), nil
}
