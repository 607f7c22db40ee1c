package core

import "fmt"

// MessageConfig holds the static parts of the login message. Domain and URI
// are required; issuance fails fast when either is missing.
type MessageConfig struct {
	Domain  string
	URI     string
	ChainID int64
}

// BuildLoginMessage renders the exact text the client signs. The verifier
// compares the stored message byte-for-byte against the submitted one, so
// the layout here is wire format and must not change.
func BuildLoginMessage(cfg MessageConfig, walletAddress, nonce string) (string, error) {
	if cfg.Domain == "" || cfg.URI == "" {
		return "", ErrMessageConfig
	}

	return fmt.Sprintf(
		"Sign in to %s\n"+
			"URI: %s\n"+
			"Wallet: %s\n"+
			"Chain ID: %d\n"+
			"Nonce: %s",
		cfg.Domain, cfg.URI, walletAddress, cfg.ChainID, nonce,
	), nil
}
