package eth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/layer-3/walletgate/ports"
)

// PersonalSignRecoverer recovers the signer of an EIP-191 personal_sign
// message. Wallets sign keccak256("\x19Ethereum Signed Message:\n" + len +
// message); recovery runs over the same prefixed hash.
type PersonalSignRecoverer struct{}

// NewPersonalSignRecoverer creates the production recoverer.
func NewPersonalSignRecoverer() ports.SignatureRecoverer {
	return PersonalSignRecoverer{}
}

// Recover returns the checksummed address that produced the signature. Any
// decode or curve failure is returned to the caller, which treats it as a
// verification failure rather than distinguishing malformed input.
func (PersonalSignRecoverer) Recover(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	// Wallets emit V as 27/28; go-ethereum expects 0/1.
	sigCopy := make([]byte, len(sig))
	copy(sigCopy, sig)
	if sigCopy[crypto.RecoveryIDOffset] >= 27 {
		sigCopy[crypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sigCopy)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey).Hex(), nil
}
