package core

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Challenge is a single login challenge issued for a wallet address. One row
// is written per issuance; rows are retired by marking them used, never by
// mutating the message or nonce.
type Challenge struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WalletAddress string     `gorm:"size:255;not null;uniqueIndex:idx_wallet_nonce" json:"walletAddress"`
	Nonce         string     `gorm:"size:255;not null;uniqueIndex:idx_wallet_nonce" json:"nonce"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	ExpiresAt     time.Time  `gorm:"not null;index" json:"expiresAt"`
	UsedAt        *time.Time `json:"usedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (Challenge) TableName() string {
	return "auth_challenges"
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Valid reports whether the challenge is still consumable: never used and
// not yet expired.
func (c *Challenge) Valid(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}
