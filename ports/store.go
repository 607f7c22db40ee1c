package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/layer-3/walletgate/core"
)

// ChallengeStore persists login challenges. Implementations must be safe for
// concurrent use; retry policy on transient failures belongs to callers.
type ChallengeStore interface {
	// Create persists a new challenge row.
	Create(ctx context.Context, challenge *core.Challenge) error

	// FindValid returns an unused, unexpired challenge matching the wallet
	// address and exact message text, or nil when none exists.
	FindValid(ctx context.Context, walletAddress, message string) (*core.Challenge, error)

	// MarkUsed consumes a challenge. The used-at timestamp is write-once:
	// a row that already carries one is left untouched.
	MarkUsed(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes unused challenges for the wallet whose expiry
	// has passed.
	DeleteExpired(ctx context.Context, walletAddress string) error

	// DeleteAllExpired removes expired unused challenges across all wallets.
	// Used by the background sweep.
	DeleteAllExpired(ctx context.Context) (int64, error)

	// InvalidateOpen marks every unused challenge for the wallet as used,
	// regardless of expiry, so only the next issued challenge can verify.
	InvalidateOpen(ctx context.Context, walletAddress string) error
}

// UserStore persists user profiles keyed by normalized wallet address.
type UserStore interface {
	UpsertByWallet(ctx context.Context, walletAddress string) (*core.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*core.User, error)
	FindByWallet(ctx context.Context, walletAddress string) (*core.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email *string) (*core.User, error)
}
