package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ove-swap/pkg/network"
	"ove-swap/pkg/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var ErrNoPrivateKey = errors.New("private key not found. Please set OVE_SWAP_PRIVATE_KEY environment variable or add private_key to .ove-swap.yaml")

// TokenConfig is an extra ERC20 counter-asset.
type TokenConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Name     string `mapstructure:"name"`
	Address  string `mapstructure:"address"`
	Decimals int32  `mapstructure:"decimals"`
}

// Config holds the application configuration
type Config struct {
	RPCURL      string
	PrivateKey  string
	ChainID     uint64
	NetworkName string
	ExplorerURL string

	SwapContract   common.Address
	PlatformToken  common.Address
	PlatformSymbol string
	PlatformName   string
	NativeSymbol   string
	NativeName     string
	Tokens         []TokenConfig

	FallbackPriceUSD decimal.Decimal
	QuoteDebounce    time.Duration
	ReadTimeout      time.Duration
	RefreshDelay     time.Duration
	SlippageBps      uint16

	GasLimit *uint64
	GasPrice *int64

	LogLevel string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc_url", "https://bsc-dataseed.binance.org/")
	v.SetDefault("chain_id", 56)
	v.SetDefault("network_name", "BNB Smart Chain")
	v.SetDefault("explorer_url", "https://bscscan.com/")
	v.SetDefault("swap_contract", "0x068571Ec22C648Fa740F4A9857FA222d7901A4aD")
	v.SetDefault("platform_token", "0x0d5556E58862A21db65B4Aa180da231cfE6140fE")
	v.SetDefault("platform_symbol", "OVE")
	v.SetDefault("platform_name", "OVE Token")
	v.SetDefault("native_symbol", "BNB")
	v.SetDefault("native_name", "BNB")
	v.SetDefault("fallback_price_usd", "600")
	v.SetDefault("quote_debounce", "500ms")
	v.SetDefault("read_timeout", "30s")
	v.SetDefault("refresh_delay", "1s")
	v.SetDefault("slippage_bps", 50)
	v.SetDefault("log_level", "info")
}

// New returns a viper instance reading .ove-swap.yaml from $HOME or the
// working directory and OVE_SWAP_* environment variables.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName(".ove-swap")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("OVE_SWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from environment variables and config file
func Load(v *viper.Viper) (*Config, error) {
	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds and validates a Config from already loaded settings.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		RPCURL:         v.GetString("rpc_url"),
		PrivateKey:     v.GetString("private_key"),
		ChainID:        v.GetUint64("chain_id"),
		NetworkName:    v.GetString("network_name"),
		ExplorerURL:    v.GetString("explorer_url"),
		PlatformSymbol: v.GetString("platform_symbol"),
		PlatformName:   v.GetString("platform_name"),
		NativeSymbol:   v.GetString("native_symbol"),
		NativeName:     v.GetString("native_name"),
		QuoteDebounce:  v.GetDuration("quote_debounce"),
		ReadTimeout:    v.GetDuration("read_timeout"),
		RefreshDelay:   v.GetDuration("refresh_delay"),
		LogLevel:       v.GetString("log_level"),
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc_url is required")
	}
	if cfg.ChainID == 0 {
		return nil, fmt.Errorf("chain_id must be greater than 0")
	}

	var err error
	if cfg.SwapContract, err = parseAddress("swap_contract", v.GetString("swap_contract")); err != nil {
		return nil, err
	}
	if cfg.PlatformToken, err = parseAddress("platform_token", v.GetString("platform_token")); err != nil {
		return nil, err
	}

	if cfg.FallbackPriceUSD, err = decimal.NewFromString(v.GetString("fallback_price_usd")); err != nil {
		return nil, fmt.Errorf("invalid fallback_price_usd: %w", err)
	}

	bps := v.GetInt("slippage_bps")
	if bps < 0 || bps > 10000 {
		return nil, fmt.Errorf("slippage_bps must be between 0 and 10000, got %d", bps)
	}
	cfg.SlippageBps = uint16(bps)

	if v.IsSet("gas_limit") {
		limit := v.GetUint64("gas_limit")
		cfg.GasLimit = &limit
	}
	if v.IsSet("gas_price") {
		price := v.GetInt64("gas_price")
		cfg.GasPrice = &price
	}

	if err := v.UnmarshalKey("tokens", &cfg.Tokens); err != nil {
		return nil, fmt.Errorf("invalid tokens: %w", err)
	}

	return cfg, nil
}

// RequireSigner fails when no private key is configured.
func (c *Config) RequireSigner() error {
	if c.PrivateKey == "" {
		return ErrNoPrivateKey
	}
	return nil
}

// Registry builds the asset registry: native asset, platform token and any
// configured counter-assets.
func (c *Config) Registry() (*types.Registry, error) {
	assets := []types.Asset{
		{Address: types.NativeAddress, Symbol: c.NativeSymbol, Name: c.NativeName, Decimals: 18, IsNative: true},
		{Address: c.PlatformToken, Symbol: c.PlatformSymbol, Name: c.PlatformName, Decimals: 18},
	}
	for _, t := range c.Tokens {
		addr, err := parseAddress("tokens."+t.Symbol, t.Address)
		if err != nil {
			return nil, err
		}
		decimals := t.Decimals
		if decimals == 0 {
			decimals = 18
		}
		assets = append(assets, types.Asset{Address: addr, Symbol: strings.ToUpper(t.Symbol), Name: t.Name, Decimals: decimals})
	}
	return types.NewRegistry(c.PlatformToken, assets...)
}

// Network describes the required network for switch/add requests.
func (c *Config) Network() network.Descriptor {
	d := network.Descriptor{
		ChainID:   c.ChainID,
		ChainName: c.NetworkName,
		NativeCurrency: network.Currency{
			Name:     c.NativeName,
			Symbol:   c.NativeSymbol,
			Decimals: 18,
		},
		RPCURLs: []string{c.RPCURL},
	}
	if c.ExplorerURL != "" {
		d.ExplorerURLs = []string{c.ExplorerURL}
	}
	return d
}

func parseAddress(key, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", key, value)
	}
	return common.HexToAddress(value), nil
}
