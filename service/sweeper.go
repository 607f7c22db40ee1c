package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/layer-3/walletgate/ports"
)

// DefaultSweepInterval is how often expired challenges are garbage collected
const DefaultSweepInterval = 10 * time.Minute

// Sweeper periodically removes expired unused challenges across all wallets.
// Issuance already garbage-collects opportunistically per wallet; the sweeper
// covers wallets that never come back.
type Sweeper struct {
	challenges ports.ChallengeStore
	interval   time.Duration
	logger     *slog.Logger
}

// NewSweeper creates a sweeper. A non-positive interval falls back to the
// default.
func NewSweeper(challenges ports.ChallengeStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{challenges: challenges, interval: interval, logger: logger}
}

// Run blocks, sweeping on each tick until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.challenges.DeleteAllExpired(ctx)
			if err != nil {
				s.logger.Error("challenge sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.Info("expired challenges removed", "count", removed)
			}
		}
	}
}
