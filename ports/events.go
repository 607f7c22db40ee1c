package ports

import "context"

// EventPublisher notifies other services about authentication outcomes.
// Publishing is best-effort; failures are logged, never surfaced to clients.
type EventPublisher interface {
	PublishLogin(ctx context.Context, walletAddress, userID string) error
	PublishLockout(ctx context.Context, walletAddress string, attempts int) error
}
