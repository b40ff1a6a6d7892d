package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForDealership scopes a query to one tenant. Every tenant-owned query in
// the codebase goes through this.
func ForDealership(dealershipID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("dealership_id = ?", dealershipID)
	}
}
