package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PlanActive    = "active"
	PlanCompleted = "completed"
	PlanDefaulted = "defaulted"
	PlanCancelled = "cancelled"
)

const (
	MinInstallments = 1
	MaxInstallments = 120
)

type InstallmentPlan struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index"`
	PurchaseID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	TotalAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DepositAmount        decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	NumberOfInstallments int             `gorm:"not null"`
	InterestRate         decimal.Decimal `gorm:"type:decimal(5,2);default:0"` // annual %, simple interest

	StartDate  time.Time `gorm:"not null"`
	PaymentDay int       `gorm:"default:1"` // day of month installments fall due

	Status string `gorm:"type:varchar(20);not null;default:'active';index"`
	Notes  string

	Purchase Purchase          `gorm:"foreignKey:PurchaseID"`
	Schedule []PaymentSchedule `gorm:"foreignKey:PlanID"`

	gorm.Model
}

// BalanceAfterDeposit is the principal being financed.
func (p *InstallmentPlan) BalanceAfterDeposit() decimal.Decimal {
	return p.TotalAmount.Sub(p.DepositAmount)
}

// TotalWithInterest applies simple interest over the plan term:
// principal * (1 + rate/100 * months/12), rounded to 2dp.
func (p *InstallmentPlan) TotalWithInterest() decimal.Decimal {
	principal := p.BalanceAfterDeposit()
	if p.InterestRate.IsZero() {
		return principal.Round(2)
	}
	interest := principal.
		Mul(p.InterestRate).
		Mul(decimal.NewFromInt(int64(p.NumberOfInstallments))).
		Div(decimal.NewFromInt(1200)).
		Round(2)
	return principal.Add(interest)
}

// MonthlyInstallment is the per-row amount. The final schedule row absorbs
// the rounding remainder so row amounts always sum to TotalWithInterest.
func (p *InstallmentPlan) MonthlyInstallment() decimal.Decimal {
	if p.NumberOfInstallments <= 0 {
		return decimal.Zero
	}
	return p.TotalWithInterest().
		Div(decimal.NewFromInt(int64(p.NumberOfInstallments))).
		Round(2)
}

// PaymentProgress returns percent collected, from the preloaded schedule.
func (p *InstallmentPlan) PaymentProgress() decimal.Decimal {
	total := p.TotalWithInterest()
	if total.IsZero() {
		return decimal.Zero
	}
	paid := decimal.Zero
	for _, row := range p.Schedule {
		paid = paid.Add(row.AmountPaid)
	}
	return paid.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
}

// IsOverdue reports whether any unpaid schedule row is past due. Requires
// the schedule to be preloaded.
func (p *InstallmentPlan) IsOverdue(today time.Time) bool {
	for _, row := range p.Schedule {
		if row.IsOverdue(today) {
			return true
		}
	}
	return false
}

func (p *InstallmentPlan) OverdueCount(today time.Time) int {
	n := 0
	for _, row := range p.Schedule {
		if row.IsOverdue(today) {
			n++
		}
	}
	return n
}

func ValidPlanStatus(s string) bool {
	switch s {
	case PlanActive, PlanCompleted, PlanDefaulted, PlanCancelled:
		return true
	}
	return false
}
