package ports

// AnomalyDetector throttles signature verification per wallet address using
// a sliding window of failed attempts. Addresses passed in are already
// normalized by the caller; implementations normalize again defensively.
type AnomalyDetector interface {
	// IsBlocked reports whether the wallet has exceeded the failure
	// threshold within the current window. Stale windows are discarded
	// lazily here; there is no background sweep.
	IsBlocked(walletAddress string) bool

	// RecordFailedAttempt counts one failed verification. Starts a fresh
	// window when none exists or the previous one has elapsed.
	RecordFailedAttempt(walletAddress string)

	// ResetFailedAttempts clears the counter after a successful verification.
	ResetFailedAttempts(walletAddress string)

	// FailedAttemptCount returns the count inside the current window, with
	// the same lazy-expiry semantics as IsBlocked.
	FailedAttemptCount(walletAddress string) int
}
