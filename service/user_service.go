package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
)

// UserService exposes profile reads and updates around the user store.
type UserService struct {
	users ports.UserStore
}

// NewUserService creates a new user service.
func NewUserService(users ports.UserStore) *UserService {
	return &UserService{users: users}
}

// Profile loads a user by id.
func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*core.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, core.ErrUserNotFound
	}
	return user, nil
}

// FindByWallet loads a user by normalized wallet address, nil when absent.
func (s *UserService) FindByWallet(ctx context.Context, walletAddress string) (*core.User, error) {
	return s.users.FindByWallet(ctx, walletAddress)
}

// UpdateProfile sanitizes and applies profile field updates. Nil fields are
// left untouched.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email *string) (*core.User, error) {
	if fullName != nil {
		cleaned := SanitizeString(*fullName)
		fullName = &cleaned
	}
	if email != nil {
		cleaned := SanitizeLowercaseString(*email)
		email = &cleaned
	}
	return s.users.UpdateProfile(ctx, id, fullName, email)
}
