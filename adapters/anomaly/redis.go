package anomaly

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/walletgate/core"
)

// RedisDetector shares failed-attempt counters across instances through an
// increment-and-expire key per wallet. The key's TTL starts at the first
// failure of a window, so expiry matches the memory detector's
// first-attempt-anchored window. Redis outages fail open: an unreachable
// counter never locks a wallet out.
type RedisDetector struct {
	client      *redis.Client
	prefix      string
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
}

// NewRedisDetector creates a Redis-backed detector.
func NewRedisDetector(client *redis.Client, maxAttempts int, window time.Duration, logger *slog.Logger) *RedisDetector {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxFailedAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisDetector{
		client:      client,
		prefix:      "walletgate:failed:",
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
	}
}

func (d *RedisDetector) key(walletAddress string) string {
	return d.prefix + core.NormalizeAddress(walletAddress)
}

func (d *RedisDetector) IsBlocked(walletAddress string) bool {
	ctx := context.Background()

	count, err := d.client.Get(ctx, d.key(walletAddress)).Int()
	if err != nil {
		if err != redis.Nil {
			d.logger.Error("failed attempt counter unavailable", "error", err)
		}
		return false
	}

	if count >= d.maxAttempts {
		d.logger.Warn("wallet temporarily blocked",
			"wallet", core.RedactAddress(walletAddress),
			"attempts", count,
		)
		return true
	}
	return false
}

func (d *RedisDetector) RecordFailedAttempt(walletAddress string) {
	ctx := context.Background()
	key := d.key(walletAddress)

	count, err := d.client.Incr(ctx, key).Result()
	if err != nil {
		d.logger.Error("failed to record attempt", "error", err)
		return
	}
	if count == 1 {
		if err := d.client.Expire(ctx, key, d.window).Err(); err != nil {
			d.logger.Error("failed to set attempt window", "error", err)
		}
	}

	d.logger.Warn("failed login attempt",
		"wallet", core.RedactAddress(walletAddress),
		"attempts", count,
		"max_attempts", d.maxAttempts,
	)
}

func (d *RedisDetector) ResetFailedAttempts(walletAddress string) {
	if err := d.client.Del(context.Background(), d.key(walletAddress)).Err(); err != nil {
		d.logger.Error("failed to reset attempts", "error", err)
	}
}

func (d *RedisDetector) FailedAttemptCount(walletAddress string) int {
	count, err := d.client.Get(context.Background(), d.key(walletAddress)).Int()
	if err != nil {
		return 0
	}
	return count
}
