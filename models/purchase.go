package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase links a client to a vehicle they are paying off. Balance is
// maintained by the payment service, never written directly by handlers.
type Purchase struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index"`

	ClientID  uuid.UUID `gorm:"type:uuid;not null;index"`
	VehicleID uuid.UUID `gorm:"type:uuid;not null;index"`

	PurchaseDate  time.Time       `gorm:"not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DepositPaid   decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	TotalPaid     decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Balance       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	IsPaidOff   bool `gorm:"default:false;index"`
	DatePaidOff *time.Time
	Notes       string

	Client   Client           `gorm:"foreignKey:ClientID"`
	Vehicle  Vehicle          `gorm:"foreignKey:VehicleID"`
	Plan     *InstallmentPlan `gorm:"foreignKey:PurchaseID"`
	Payments []Payment        `gorm:"foreignKey:PurchaseID"`

	gorm.Model
}
