package ports

import "github.com/layer-3/walletgate/core"

// Tokenizer converts between authenticated users and session credentials.
type Tokenizer interface {
	// IssueAccessToken signs a credential carrying the user's stable
	// subject id and wallet address.
	IssueAccessToken(user *core.User) (string, error)

	// ParseAccessToken verifies a credential and returns its claims.
	ParseAccessToken(token string) (*AccessClaims, error)
}

// AccessClaims is the verified content of an access token.
type AccessClaims struct {
	Subject       string
	WalletAddress string
}
