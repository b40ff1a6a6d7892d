package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ClientActive    = "active"
	ClientInactive  = "inactive"
	ClientDefaulted = "defaulted"
	ClientCompleted = "completed"
)

type Client struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_dealership_national_id,priority:1"`

	FirstName  string `gorm:"not null"`
	LastName   string `gorm:"not null"`
	Email      string
	Phone      string `gorm:"not null"`
	NationalID string `gorm:"not null;uniqueIndex:idx_dealership_national_id,priority:2"`

	Address    string
	City       string
	Occupation string
	Employer   string

	CreditLimit decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	Status          string `gorm:"type:varchar(20);not null;default:'active';index"`
	IsBlacklisted   bool   `gorm:"default:false"`
	BlacklistReason string
	Notes           string

	Purchases []Purchase `gorm:"foreignKey:ClientID"`

	gorm.Model
}

func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

func ValidClientStatus(s string) bool {
	switch s {
	case ClientActive, ClientInactive, ClientDefaulted, ClientCompleted:
		return true
	}
	return false
}
