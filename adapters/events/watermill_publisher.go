package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/layer-3/walletgate/ports"
)

const (
	// LoginTopic carries successful wallet logins
	LoginTopic = "walletgate.login"

	// LockoutTopic carries wallet lockouts from the anomaly detector
	LockoutTopic = "walletgate.lockout"
)

// LoginEvent is published after a successful signature verification.
type LoginEvent struct {
	WalletAddress string    `json:"wallet_address"`
	UserID        string    `json:"user_id"`
	At            time.Time `json:"at"`
}

// LockoutEvent is published when a verification is rejected because the
// wallet exceeded the failed-attempt threshold.
type LockoutEvent struct {
	WalletAddress string    `json:"wallet_address"`
	Attempts      int       `json:"attempts"`
	At            time.Time `json:"at"`
}

// WatermillPublisher implements ports.EventPublisher on a Watermill publisher.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) PublishLogin(ctx context.Context, walletAddress, userID string) error {
	return p.publish(LoginTopic, LoginEvent{
		WalletAddress: walletAddress,
		UserID:        userID,
		At:            time.Now().UTC(),
	})
}

func (p *WatermillPublisher) PublishLockout(ctx context.Context, walletAddress string, attempts int) error {
	return p.publish(LockoutTopic, LockoutEvent{
		WalletAddress: walletAddress,
		Attempts:      attempts,
		At:            time.Now().UTC(),
	})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
