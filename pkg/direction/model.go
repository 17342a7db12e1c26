// Package direction tracks which asset is being sold and which is being bought.
package direction

import (
	"errors"
	"sync"

	"ove-swap/pkg/types"
)

var (
	// ErrSameAsset is returned when a selection would make from and to equal.
	ErrSameAsset = errors.New("from and to assets must differ")
	// ErrUnknownAsset is returned for assets missing from the registry.
	ErrUnknownAsset = errors.New("asset is not in the registry")
	// ErrNoPlatformLeg is returned when neither side is the platform token.
	ErrNoPlatformLeg = errors.New("one side of the trade must be the platform token")
)

// Model holds the current trade direction. Selections that would break the
// from != to invariant are rejected, never auto-corrected.
type Model struct {
	registry *types.Registry

	mu       sync.RWMutex
	pair     types.Pair
	version  uint64
	onChange []func(types.Pair)
}

// NewModel starts in the buy direction: native asset in, platform token out.
func NewModel(registry *types.Registry) *Model {
	return &Model{
		registry: registry,
		pair: types.Pair{
			From: registry.Native(),
			To:   registry.Platform(),
		},
	}
}

// OnChange registers fn to run after every successful mutation.
func (m *Model) OnChange(fn func(types.Pair)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Current returns the active pair.
func (m *Model) Current() types.Pair {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair
}

// Version increases on every mutation. Quotes remember the version they were
// computed under so a stale one is never shown against a new direction.
func (m *Model) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Flip swaps from and to.
func (m *Model) Flip() types.Pair {
	return m.set(func(p types.Pair) (types.Pair, error) {
		return p.Flipped(), nil
	})
}

// SelectFrom replaces the asset being sold.
func (m *Model) SelectFrom(asset types.Asset) error {
	return m.trySet(func(p types.Pair) (types.Pair, error) {
		return m.validate(types.Pair{From: asset, To: p.To})
	})
}

// SelectTo replaces the asset being bought.
func (m *Model) SelectTo(asset types.Asset) error {
	return m.trySet(func(p types.Pair) (types.Pair, error) {
		return m.validate(types.Pair{From: p.From, To: asset})
	})
}

// Candidates lists assets that can be selected for the given side without
// violating the invariant.
func (m *Model) Candidates(forFrom bool) []types.Asset {
	p := m.Current()
	out := make([]types.Asset, 0)
	for _, a := range m.registry.Assets() {
		next := types.Pair{From: a, To: p.To}
		if !forFrom {
			next = types.Pair{From: p.From, To: a}
		}
		if _, err := m.validate(next); err == nil {
			out = append(out, a)
		}
	}
	return out
}

func (m *Model) validate(p types.Pair) (types.Pair, error) {
	if _, ok := m.registry.ByAddress(p.From.Address); !ok {
		return p, ErrUnknownAsset
	}
	if _, ok := m.registry.ByAddress(p.To.Address); !ok {
		return p, ErrUnknownAsset
	}
	if !p.Valid() {
		return p, ErrSameAsset
	}
	if !m.registry.IsPlatform(p.From) && !m.registry.IsPlatform(p.To) {
		return p, ErrNoPlatformLeg
	}
	return p, nil
}

func (m *Model) set(fn func(types.Pair) (types.Pair, error)) types.Pair {
	_ = m.trySet(fn)
	return m.Current()
}

func (m *Model) trySet(fn func(types.Pair) (types.Pair, error)) error {
	m.mu.Lock()
	next, err := fn(m.pair)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	changed := next != m.pair
	if changed {
		m.pair = next
		m.version++
	}
	hooks := append([]func(types.Pair){}, m.onChange...)
	m.mu.Unlock()

	if changed {
		for _, h := range hooks {
			h(next)
		}
	}
	return nil
}
