package session

// ButtonState drives the primary action of the surrounding UI.
type ButtonState int

const (
	ButtonConnect ButtonState = iota
	ButtonSwitchNetwork
	ButtonEnterAmount
	ButtonQuoting
	ButtonSwapping
	ButtonSwap
)

func (b ButtonState) String() string {
	switch b {
	case ButtonConnect:
		return "Connect Wallet"
	case ButtonSwitchNetwork:
		return "Switch Network"
	case ButtonEnterAmount:
		return "Enter Amount"
	case ButtonQuoting:
		return "Fetching Quote"
	case ButtonSwapping:
		return "Swapping"
	case ButtonSwap:
		return "Swap"
	default:
		return "Unknown"
	}
}

// Enabled reports whether the action can be triggered. Only the swap and the
// two remediation states accept input.
func (b ButtonState) Enabled() bool {
	return b == ButtonSwap || b == ButtonConnect || b == ButtonSwitchNetwork
}
