package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Swap contract surface: fee getters, price feed, fee-aware quotes and the
// three trade entry points.
const swapContractABI = `[
{"inputs":[],"name":"swapFeeBuyBPS","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"swapFeeSellBPS","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"token","type":"address"}],"name":"getTokenPriceInUSD","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"ovepriceInUSD","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"paymentToken","type":"address"},{"name":"amountIn","type":"uint256"}],"name":"calculateBuyOVEWithFees","outputs":[{"name":"oveAmount","type":"uint256"},{"name":"feeAmount","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"receiveToken","type":"address"},{"name":"oveAmount","type":"uint256"}],"name":"calculateSellOVEWithFees","outputs":[{"name":"tokenAmount","type":"uint256"},{"name":"feeAmount","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"buyOVEWithBNB","outputs":[],"stateMutability":"payable","type":"function"},
{"inputs":[{"name":"paymentToken","type":"address"},{"name":"amountIn","type":"uint256"}],"name":"buyOVE","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"receiveToken","type":"address"},{"name":"oveAmount","type":"uint256"}],"name":"sellOVE","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

const erc20ABI = `[
{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// Contract method names.
const (
	methodFeeBuy        = "swapFeeBuyBPS"
	methodFeeSell       = "swapFeeSellBPS"
	methodTokenPriceUSD = "getTokenPriceInUSD"
	methodPlatformPrice = "ovepriceInUSD"
	methodQuoteBuy      = "calculateBuyOVEWithFees"
	methodQuoteSell     = "calculateSellOVEWithFees"
	methodBuyNative     = "buyOVEWithBNB"
	methodBuy           = "buyOVE"
	methodSell          = "sellOVE"
	methodBalanceOf     = "balanceOf"
	methodApprove       = "approve"
)

var (
	SwapABI  = mustParseABI("swap contract", swapContractABI)
	ERC20ABI = mustParseABI("erc20", erc20ABI)
)

func mustParseABI(name, def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("failed to parse %s ABI: %v", name, err))
	}
	return parsed
}
