package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentSchedule is one installment row of a plan. Overdue state is always
// computed from DueDate and IsPaid, never stored.
type PaymentSchedule struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_plan_installment,priority:1"`

	InstallmentNumber int       `gorm:"not null;uniqueIndex:idx_plan_installment,priority:2"`
	DueDate           time.Time `gorm:"not null;index"`

	AmountDue  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	IsPaid    bool `gorm:"default:false;index"`
	PaidDate  *time.Time
	IsPartial bool `gorm:"default:false"`
	Notes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *PaymentSchedule) RemainingAmount() decimal.Decimal {
	remaining := s.AmountDue.Sub(s.AmountPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

func (s *PaymentSchedule) IsOverdue(today time.Time) bool {
	return !s.IsPaid && s.DueDate.Before(beginningOfDay(today))
}

func (s *PaymentSchedule) DaysOverdue(today time.Time) int {
	if !s.IsOverdue(today) {
		return 0
	}
	return int(beginningOfDay(today).Sub(beginningOfDay(s.DueDate)).Hours() / 24)
}

func beginningOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
