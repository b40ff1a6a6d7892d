package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MethodCash         = "cash"
	MethodMpesa        = "mpesa"
	MethodBankTransfer = "bank_transfer"
	MethodCheque       = "cheque"
	MethodCard         = "card"
	MethodOther        = "other"
)

type Payment struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_dealership_receipt,priority:1"`

	PurchaseID uuid.UUID  `gorm:"type:uuid;not null;index"`
	PlanID     *uuid.UUID `gorm:"type:uuid;index"`

	ReceiptNumber string          `gorm:"not null;uniqueIndex:idx_dealership_receipt,priority:2"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentDate   time.Time       `gorm:"not null;index"`

	Method    string `gorm:"type:varchar(20);not null"`
	Reference string
	Notes     string

	ReceivedByID   uuid.UUID `gorm:"type:uuid"`
	ReceivedByName string

	Purchase Purchase `gorm:"foreignKey:PurchaseID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodCash, MethodMpesa, MethodBankTransfer, MethodCheque, MethodCard, MethodOther:
		return true
	}
	return false
}

// ReferenceRequired reports whether the method needs a transaction reference.
func ReferenceRequired(method string) bool {
	switch method {
	case MethodMpesa, MethodBankTransfer, MethodCheque, MethodCard:
		return true
	}
	return false
}
