// Package network checks the connected chain against the required one and
// asks the wallet provider to switch, adding the network when the provider
// does not know it.
package network

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Wallet provider RPC methods (EIP-3326, EIP-3085).
const (
	MethodSwitchChain = "wallet_switchEthereumChain"
	MethodAddChain    = "wallet_addEthereumChain"
)

// CodeUnrecognizedChain is the provider error code for an unknown chain id.
const CodeUnrecognizedChain = 4902

type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Descriptor is everything a provider needs to add a network.
type Descriptor struct {
	ChainID        uint64
	ChainName      string
	NativeCurrency Currency
	RPCURLs        []string
	ExplorerURLs   []string
}

func (d Descriptor) ChainIDHex() string {
	return hexutil.EncodeUint64(d.ChainID)
}

type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

type AddChainParams struct {
	ChainID           string   `json:"chainId"`
	ChainName         string   `json:"chainName"`
	NativeCurrency    Currency `json:"nativeCurrency"`
	RPCURLs           []string `json:"rpcUrls"`
	BlockExplorerURLs []string `json:"blockExplorerUrls,omitempty"`
}

func (d Descriptor) SwitchParams() SwitchChainParams {
	return SwitchChainParams{ChainID: d.ChainIDHex()}
}

func (d Descriptor) AddParams() AddChainParams {
	return AddChainParams{
		ChainID:           d.ChainIDHex(),
		ChainName:         d.ChainName,
		NativeCurrency:    d.NativeCurrency,
		RPCURLs:           d.RPCURLs,
		BlockExplorerURLs: d.ExplorerURLs,
	}
}
