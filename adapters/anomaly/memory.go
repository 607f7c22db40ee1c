package anomaly

import (
	"log/slog"
	"sync"
	"time"

	"github.com/layer-3/walletgate/core"
)

const (
	// DefaultMaxFailedAttempts is the failure threshold per window
	DefaultMaxFailedAttempts = 5

	// DefaultWindow is the sliding window for failed attempts
	DefaultWindow = time.Hour

	// suspicious is the count at which a wallet gets flagged before lockout
	suspicious = 3
)

type failedAttempt struct {
	count          int
	firstAttemptAt time.Time
	lastAttemptAt  time.Time
}

// MemoryDetector tracks failed verification attempts per wallet in process
// memory. Counters are a throttle against brute-force probing on a single
// instance, not a durable audit trail: a restart clears all lockouts. Window
// expiry is lazy; there is no background sweep.
type MemoryDetector struct {
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger

	mu       sync.Mutex
	attempts map[string]*failedAttempt

	now func() time.Time
}

// NewMemoryDetector creates an in-process detector. Non-positive parameters
// fall back to the defaults.
func NewMemoryDetector(maxAttempts int, window time.Duration, logger *slog.Logger) *MemoryDetector {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxFailedAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryDetector{
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
		attempts:    make(map[string]*failedAttempt),
		now:         time.Now,
	}
}

func (d *MemoryDetector) IsBlocked(walletAddress string) bool {
	normalized := core.NormalizeAddress(walletAddress)

	d.mu.Lock()
	defer d.mu.Unlock()

	record, ok := d.attempts[normalized]
	if !ok {
		return false
	}

	now := d.now()
	elapsed := now.Sub(record.firstAttemptAt)
	if elapsed > d.window {
		delete(d.attempts, normalized)
		return false
	}

	if record.count >= d.maxAttempts {
		remaining := d.window - elapsed
		d.logger.Warn("wallet temporarily blocked",
			"wallet", core.RedactAddress(normalized),
			"attempts", record.count,
			"unblocks_in_minutes", int(remaining.Minutes())+1,
		)
		return true
	}

	return false
}

func (d *MemoryDetector) RecordFailedAttempt(walletAddress string) {
	normalized := core.NormalizeAddress(walletAddress)
	now := d.now()

	d.mu.Lock()
	record, ok := d.attempts[normalized]
	if !ok || now.Sub(record.firstAttemptAt) > d.window {
		record = &failedAttempt{count: 1, firstAttemptAt: now, lastAttemptAt: now}
		d.attempts[normalized] = record
	} else {
		record.count++
		record.lastAttemptAt = now
	}
	count := record.count
	d.mu.Unlock()

	d.logger.Warn("failed login attempt",
		"wallet", core.RedactAddress(normalized),
		"attempts", count,
		"max_attempts", d.maxAttempts,
	)
	if count >= suspicious {
		d.logger.Warn("suspicious activity detected",
			"wallet", core.RedactAddress(normalized),
			"attempts", count,
			"window", d.window.String(),
		)
	}
}

func (d *MemoryDetector) ResetFailedAttempts(walletAddress string) {
	normalized := core.NormalizeAddress(walletAddress)

	d.mu.Lock()
	record, ok := d.attempts[normalized]
	if ok {
		delete(d.attempts, normalized)
	}
	d.mu.Unlock()

	if ok && record.count > 0 {
		d.logger.Info("failed attempts reset after successful login",
			"wallet", core.RedactAddress(normalized),
		)
	}
}

func (d *MemoryDetector) FailedAttemptCount(walletAddress string) int {
	normalized := core.NormalizeAddress(walletAddress)

	d.mu.Lock()
	defer d.mu.Unlock()

	record, ok := d.attempts[normalized]
	if !ok {
		return 0
	}
	if d.now().Sub(record.firstAttemptAt) > d.window {
		delete(d.attempts, normalized)
		return 0
	}
	return record.count
}
