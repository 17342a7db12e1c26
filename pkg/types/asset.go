package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeAddress is the sentinel address standing in for the chain's base currency.
var NativeAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

var (
	ErrRegistryTooSmall  = errors.New("registry needs at least two assets")
	ErrNativeCount       = errors.New("registry needs exactly one native asset")
	ErrNativeAddress     = errors.New("native asset must use the sentinel address")
	ErrPlatformNotListed = errors.New("platform token is not in the registry")
)

// Asset describes a tradable asset. Immutable once registered.
type Asset struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name,omitempty"`
	Decimals int32          `json:"decimals"`
	IsNative bool           `json:"is_native"`
}

// Equal reports whether both descriptors point at the same asset.
func (a Asset) Equal(other Asset) bool {
	return a.Address == other.Address
}

func (a Asset) String() string {
	return a.Symbol
}

// Registry is the fixed set of assets the engine can trade.
type Registry struct {
	assets   []Asset
	native   Asset
	platform Asset
}

// NewRegistry validates the asset list and returns a registry. The platform
// address must match one of the assets and must not be the native one.
func NewRegistry(platform common.Address, assets ...Asset) (*Registry, error) {
	if len(assets) < 2 {
		return nil, ErrRegistryTooSmall
	}

	r := &Registry{assets: make([]Asset, 0, len(assets))}
	seenAddr := make(map[common.Address]struct{}, len(assets))
	seenSym := make(map[string]struct{}, len(assets))
	natives := 0
	foundPlatform := false

	for _, a := range assets {
		if a.Symbol == "" {
			return nil, fmt.Errorf("asset %s has no symbol", a.Address.Hex())
		}
		if a.Decimals < 0 || a.Decimals > 36 {
			return nil, fmt.Errorf("asset %s has invalid decimals %d", a.Symbol, a.Decimals)
		}
		if _, dup := seenAddr[a.Address]; dup {
			return nil, fmt.Errorf("duplicate asset address %s", a.Address.Hex())
		}
		sym := strings.ToUpper(a.Symbol)
		if _, dup := seenSym[sym]; dup {
			return nil, fmt.Errorf("duplicate asset symbol %s", a.Symbol)
		}
		seenAddr[a.Address] = struct{}{}
		seenSym[sym] = struct{}{}

		if a.IsNative {
			if a.Address != NativeAddress {
				return nil, ErrNativeAddress
			}
			natives++
			r.native = a
		} else if a.Address == NativeAddress {
			return nil, ErrNativeAddress
		}

		if a.Address == platform {
			if a.IsNative {
				return nil, fmt.Errorf("platform token cannot be the native asset")
			}
			r.platform = a
			foundPlatform = true
		}

		r.assets = append(r.assets, a)
	}

	if natives != 1 {
		return nil, ErrNativeCount
	}
	if !foundPlatform {
		return nil, ErrPlatformNotListed
	}

	return r, nil
}

// Assets returns a copy of the registered assets in registration order.
func (r *Registry) Assets() []Asset {
	out := make([]Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

func (r *Registry) Native() Asset   { return r.native }
func (r *Registry) Platform() Asset { return r.platform }

// IsPlatform reports whether a is the platform token.
func (r *Registry) IsPlatform(a Asset) bool {
	return a.Address == r.platform.Address
}

// BySymbol looks an asset up case-insensitively.
func (r *Registry) BySymbol(symbol string) (Asset, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, a := range r.assets {
		if strings.ToUpper(a.Symbol) == symbol {
			return a, true
		}
	}
	return Asset{}, false
}

func (r *Registry) ByAddress(addr common.Address) (Asset, bool) {
	for _, a := range r.assets {
		if a.Address == addr {
			return a, true
		}
	}
	return Asset{}, false
}

// ShortenAddress renders an address as 0x1234...abcd.
func ShortenAddress(addr common.Address) string {
	h := addr.Hex()
	return h[:6] + "..." + h[len(h)-4:]
}
