package ports

// SignatureRecoverer recovers the address that signed a message off-chain.
// The returned address is not normalized; callers compare through
// core.NormalizeAddress.
type SignatureRecoverer interface {
	Recover(message, signature string) (string, error)
}
