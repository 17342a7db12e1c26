package parser

import (
	"fmt"
	"regexp"
	"strings"

	"ove-swap/pkg/types"
)

// Command is a parsed "<amount> <FROM> to <TO>" request.
type Command struct {
	Amount string
	From   string
	To     string
}

var commandPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)\s+([A-Z0-9]+)\s+(?:TO|FOR|->)\s+([A-Z0-9]+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 BNB to OVE"
//   - "1000 OVE for BNB"
//   - "25.5 USDT -> OVE"
func ParseSwapCommand(command string) (*Command, error) {
	command = strings.Join(strings.Fields(strings.ToUpper(command)), " ")
	command = strings.TrimPrefix(command, "SWAP ")

	matches := commandPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 0.1 BNB to OVE')")
	}

	return &Command{
		Amount: matches[1],
		From:   NormalizeTokenSymbol(matches[2]),
		To:     NormalizeTokenSymbol(matches[3]),
	}, nil
}

// Resolve looks both symbols up in the registry.
func (c *Command) Resolve(registry *types.Registry) (types.Pair, error) {
	from, ok := registry.BySymbol(c.From)
	if !ok {
		return types.Pair{}, fmt.Errorf("unknown token %s", c.From)
	}
	to, ok := registry.BySymbol(c.To)
	if !ok {
		return types.Pair{}, fmt.Errorf("unknown token %s", c.To)
	}
	return types.Pair{From: from, To: to}, nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	// Wrapped native is quoted as the native asset.
	aliases := map[string]string{
		"WBNB": "BNB",
	}
	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}
	return symbol
}
