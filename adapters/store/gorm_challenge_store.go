package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// GormChallengeStore implements ports.ChallengeStore on a GORM database.
type GormChallengeStore struct {
	db *gorm.DB
}

// NewChallengeStore creates a new challenge store.
func NewChallengeStore(db *gorm.DB) ports.ChallengeStore {
	return &GormChallengeStore{db: db}
}

func (s *GormChallengeStore) Create(ctx context.Context, challenge *core.Challenge) error {
	if err := s.db.WithContext(ctx).Create(challenge).Error; err != nil {
		return fmt.Errorf("%w: create challenge: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormChallengeStore) FindValid(ctx context.Context, walletAddress, message string) (*core.Challenge, error) {
	var challenge core.Challenge
	err := s.db.WithContext(ctx).
		Where("wallet_address = ? AND message = ? AND used_at IS NULL AND expires_at > ?",
			walletAddress, message, time.Now()).
		First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find challenge: %v", core.ErrStoreUnavailable, err)
	}
	return &challenge, nil
}

// MarkUsed sets used_at on an unconsumed row. The used_at IS NULL predicate
// makes the column write-once: a second call is a no-op, never an overwrite.
func (s *GormChallengeStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Model(&core.Challenge{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("%w: mark challenge used: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormChallengeStore) DeleteExpired(ctx context.Context, walletAddress string) error {
	err := s.db.WithContext(ctx).
		Where("wallet_address = ? AND used_at IS NULL AND expires_at <= ?", walletAddress, time.Now()).
		Delete(&core.Challenge{}).Error
	if err != nil {
		return fmt.Errorf("%w: delete expired challenges: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormChallengeStore) DeleteAllExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("used_at IS NULL AND expires_at <= ?", time.Now()).
		Delete(&core.Challenge{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: sweep expired challenges: %v", core.ErrStoreUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormChallengeStore) InvalidateOpen(ctx context.Context, walletAddress string) error {
	err := s.db.WithContext(ctx).
		Model(&core.Challenge{}).
		Where("wallet_address = ? AND used_at IS NULL", walletAddress).
		Update("used_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("%w: invalidate open challenges: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}
