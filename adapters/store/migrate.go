package store

import (
	"gorm.io/gorm"

	"github.com/layer-3/walletgate/core"
)

// AutoMigrate creates or updates the tables backing both stores.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&core.Challenge{}, &core.User{})
}
