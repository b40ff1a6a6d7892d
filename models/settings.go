package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SystemSettings holds the per-dealership financial defaults. One row per
// dealership, created at registration.
type SystemSettings struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	DefaultInterestRate decimal.Decimal `gorm:"type:decimal(5,2);default:5.00"`
	LatePaymentPenalty  decimal.Decimal `gorm:"type:decimal(5,2);default:2.00"`
	PaymentReminderDays int             `gorm:"default:3"`
	Currency            string          `gorm:"type:varchar(3);default:'KES'"`

	SMSEnabled   bool `gorm:"default:false"`
	EmailEnabled bool `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func DefaultSettings(dealershipID uuid.UUID) SystemSettings {
	return SystemSettings{
		ID:                  uuid.New(),
		DealershipID:        dealershipID,
		DefaultInterestRate: decimal.NewFromFloat(5.00),
		LatePaymentPenalty:  decimal.NewFromFloat(2.00),
		PaymentReminderDays: 3,
		Currency:            "KES",
	}
}
