package core

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the profile record owned by the wallet holder. The wallet address
// is stored normalized and is the upsert key on login.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WalletAddress string     `gorm:"size:255;not null;uniqueIndex" json:"walletAddress"`
	FullName      *string    `gorm:"size:255" json:"fullName,omitempty"`
	Email         *string    `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	IsActive      bool       `gorm:"default:true" json:"isActive"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.WalletAddress = NormalizeAddress(u.WalletAddress)
	return nil
}

func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.WalletAddress = NormalizeAddress(u.WalletAddress)
	return nil
}

// PublicUser is the projection returned to clients. It never carries stored
// secrets or internal flags.
type PublicUser struct {
	ID            uuid.UUID  `json:"id"`
	WalletAddress string     `json:"walletAddress"`
	FullName      *string    `json:"fullName,omitempty"`
	Email         *string    `json:"email,omitempty"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		WalletAddress: u.WalletAddress,
		FullName:      u.FullName,
		Email:         u.Email,
		LastLoginAt:   u.LastLoginAt,
	}
}
