package network

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"
)

// Provider is the wallet provider surface the guard needs.
type Provider interface {
	ChainID(ctx context.Context) (*big.Int, error)
	Request(ctx context.Context, method string, params ...interface{}) error
}

// IsWrongNetwork reports whether current differs from required.
func IsWrongNetwork(current, required uint64) bool {
	return current != required
}

// Guard tracks the last chain id seen from the provider.
type Guard struct {
	provider Provider
	required Descriptor
	log      zerolog.Logger

	current atomic.Uint64
}

func NewGuard(provider Provider, required Descriptor, log zerolog.Logger) *Guard {
	return &Guard{
		provider: provider,
		required: required,
		log:      log.With().Str("component", "network_guard").Logger(),
	}
}

func (g *Guard) Required() Descriptor {
	return g.required
}

// ChainID returns the last chain id read by Refresh, 0 before the first one.
func (g *Guard) ChainID() uint64 {
	return g.current.Load()
}

// WrongNetwork answers from the cached chain id and never calls the chain.
func (g *Guard) WrongNetwork() bool {
	return IsWrongNetwork(g.current.Load(), g.required.ChainID)
}

// Refresh reads the provider's chain id. On failure the cached id is kept.
func (g *Guard) Refresh(ctx context.Context) (uint64, error) {
	id, err := g.provider.ChainID(ctx)
	if err != nil {
		return g.current.Load(), fmt.Errorf("failed to get chain id: %w", err)
	}
	g.current.Store(id.Uint64())
	if g.WrongNetwork() {
		g.log.Warn().Uint64("chain_id", id.Uint64()).Uint64("required", g.required.ChainID).Msg("connected to the wrong network")
	}
	return id.Uint64(), nil
}

// SwitchNetwork asks the provider to switch to the required network. When
// the provider reports the chain as unrecognized it falls back to adding it.
// Any other provider error is returned as is, without retrying.
func (g *Guard) SwitchNetwork(ctx context.Context) error {
	err := g.provider.Request(ctx, MethodSwitchChain, g.required.SwitchParams())
	if err != nil {
		var rpcErr rpc.Error
		if !errors.As(err, &rpcErr) || rpcErr.ErrorCode() != CodeUnrecognizedChain {
			return fmt.Errorf("failed to switch network: %w", err)
		}

		g.log.Info().Str("chain", g.required.ChainName).Msg("network unknown to provider, adding it")
		if err := g.provider.Request(ctx, MethodAddChain, g.required.AddParams()); err != nil {
			return fmt.Errorf("failed to add network %s: %w", g.required.ChainName, err)
		}
	}

	if _, err := g.Refresh(ctx); err != nil {
		return err
	}
	g.log.Info().Uint64("chain_id", g.ChainID()).Msg("switched network")
	return nil
}
