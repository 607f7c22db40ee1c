package core

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress canonicalizes a wallet address to its lowercase form.
// Every store lookup, counter key and token claim goes through this; raw-case
// addresses must never be compared directly.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ValidAddress reports whether the string is a syntactically valid Ethereum
// address (0x-prefixed, 40 hex characters).
func ValidAddress(address string) bool {
	return common.IsHexAddress(strings.TrimSpace(address))
}

// RedactAddress shortens an address for log lines, keeping only the last six
// characters. Full addresses never appear in logs.
func RedactAddress(address string) string {
	if len(address) < 6 {
		return "***"
	}
	return "***" + address[len(address)-6:]
}
