package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// GormUserStore implements ports.UserStore on a GORM database.
type GormUserStore struct {
	db *gorm.DB
}

// NewUserStore creates a new user store.
func NewUserStore(db *gorm.DB) ports.UserStore {
	return &GormUserStore{db: db}
}

// UpsertByWallet returns the existing user for the wallet or creates one.
// The address is normalized before lookup so the unique index holds a single
// casing per wallet.
func (s *GormUserStore) UpsertByWallet(ctx context.Context, walletAddress string) (*core.User, error) {
	normalized := core.NormalizeAddress(walletAddress)

	var user core.User
	err := s.db.WithContext(ctx).First(&user, "wallet_address = ?", normalized).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: find user by wallet: %v", core.ErrStoreUnavailable, err)
	}

	user = core.User{WalletAddress: normalized, IsActive: true}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// A concurrent login may have won the insert race; re-read before failing.
		var existing core.User
		if ferr := s.db.WithContext(ctx).First(&existing, "wallet_address = ?", normalized).Error; ferr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("%w: create user: %v", core.ErrStoreUnavailable, err)
	}
	return &user, nil
}

func (s *GormUserStore) FindByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	var user core.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find user: %v", core.ErrStoreUnavailable, err)
	}
	return &user, nil
}

func (s *GormUserStore) FindByWallet(ctx context.Context, walletAddress string) (*core.User, error) {
	var user core.User
	err := s.db.WithContext(ctx).First(&user, "wallet_address = ?", core.NormalizeAddress(walletAddress)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find user by wallet: %v", core.ErrStoreUnavailable, err)
	}
	return &user, nil
}

func (s *GormUserStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&core.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("%w: update last login: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email *string) (*core.User, error) {
	updates := map[string]any{}
	if fullName != nil {
		updates["full_name"] = *fullName
	}
	if email != nil {
		updates["email"] = *email
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).
			Model(&core.User{}).
			Where("id = ?", id).
			Updates(updates).Error
		if err != nil {
			if isUniqueViolation(err) {
				return nil, core.ErrProfileConflict
			}
			return nil, fmt.Errorf("%w: update profile: %v", core.ErrStoreUnavailable, err)
		}
	}

	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, core.ErrUserNotFound
	}
	return user, nil
}

// isUniqueViolation matches unique-constraint failures across the engines we
// run against (Postgres 23505, sqlite "UNIQUE constraint failed").
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "duplicate key")
}
