package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ExpensePending  = "pending"
	ExpenseApproved = "approved"
	ExpensePaid     = "paid"
	ExpenseRejected = "rejected"
)

type ExpenseCategory struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_dealership_category,priority:1"`

	Name        string `gorm:"not null;uniqueIndex:idx_dealership_category,priority:2"`
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Expense struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index"`

	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExpenseDate time.Time       `gorm:"not null;index"`

	Vendor        string
	Description   string `gorm:"not null"`
	ReceiptNumber string

	Status       string     `gorm:"type:varchar(10);not null;default:'pending';index"`
	CreatedByID  uuid.UUID  `gorm:"type:uuid"`
	ApprovedByID *uuid.UUID `gorm:"type:uuid"`

	Category ExpenseCategory `gorm:"foreignKey:CategoryID"`

	gorm.Model
}

func ValidExpenseStatus(s string) bool {
	switch s {
	case ExpensePending, ExpenseApproved, ExpensePaid, ExpenseRejected:
		return true
	}
	return false
}
