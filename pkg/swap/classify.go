package swap

import (
	"strings"
)

// ErrorKind buckets a failed swap into something the user can act on.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	UserRejected
	InsufficientFunds
	GasEstimationFailed
	NetworkError
	ExecutionReverted
)

// maxUnknownMessage bounds how much raw provider text reaches the user.
const maxUnknownMessage = 100

var kindNames = map[ErrorKind]string{
	Unknown:             "unknown",
	UserRejected:        "user_rejected",
	InsufficientFunds:   "insufficient_funds",
	GasEstimationFailed: "gas_estimation_failed",
	NetworkError:        "network_error",
	ExecutionReverted:   "execution_reverted",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// Classify maps a raw provider error message to an ErrorKind by
// case-insensitive substring match. Earlier rules win.
func Classify(raw string) ErrorKind {
	msg := strings.ToLower(raw)
	switch {
	case containsAny(msg, "user rejected", "user denied", "action_rejected"):
		return UserRejected
	case containsAny(msg, "insufficient funds", "insufficient balance"):
		return InsufficientFunds
	case strings.Contains(msg, "gas") && strings.Contains(msg, "estimation"):
		return GasEstimationFailed
	case containsAny(msg, "network", "timeout"):
		return NetworkError
	case strings.Contains(msg, "execution reverted"):
		return ExecutionReverted
	default:
		return Unknown
	}
}

// Message renders the user-facing text for kind. Unknown errors show the raw
// message cut to a bounded length.
func Message(kind ErrorKind, raw string) string {
	switch kind {
	case UserRejected:
		return "Transaction cancelled by user"
	case InsufficientFunds:
		return "Insufficient balance for this transaction"
	case GasEstimationFailed:
		return "Transaction may fail. Please check your balance and try again"
	case NetworkError:
		return "Network error. Please check your connection"
	case ExecutionReverted:
		return "Transaction failed. Please check token allowance and liquidity"
	default:
		return truncate(raw, maxUnknownMessage)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
