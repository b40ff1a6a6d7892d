package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTotalWithInterest(t *testing.T) {
	plan := &InstallmentPlan{
		TotalAmount:          decimal.NewFromInt(500000),
		DepositAmount:        decimal.NewFromInt(100000),
		NumberOfInstallments: 24,
		InterestRate:         decimal.NewFromInt(10),
	}

	assert.True(t, plan.BalanceAfterDeposit().Equal(decimal.NewFromInt(400000)))
	// 400000 * 10% * 2 years = 80000 simple interest
	assert.True(t, plan.TotalWithInterest().Equal(decimal.NewFromInt(480000)))
	assert.True(t, plan.MonthlyInstallment().Equal(decimal.NewFromInt(20000)))

	plan.InterestRate = decimal.Zero
	assert.True(t, plan.TotalWithInterest().Equal(decimal.NewFromInt(400000)))
}

func TestScheduleRowOverdue(t *testing.T) {
	today := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	row := PaymentSchedule{
		DueDate:   time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
		AmountDue: decimal.NewFromInt(20000),
	}

	assert.True(t, row.IsOverdue(today))
	assert.Equal(t, 7, row.DaysOverdue(today))
	assert.True(t, row.RemainingAmount().Equal(decimal.NewFromInt(20000)))

	// paying it clears overdue state, whatever the date
	row.IsPaid = true
	row.AmountPaid = row.AmountDue
	assert.False(t, row.IsOverdue(today))
	assert.Equal(t, 0, row.DaysOverdue(today))
	assert.True(t, row.RemainingAmount().IsZero())

	// due today is not overdue yet
	dueToday := PaymentSchedule{DueDate: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)}
	assert.False(t, dueToday.IsOverdue(today))
}

func TestPlanOverdueCount(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	plan := &InstallmentPlan{
		Schedule: []PaymentSchedule{
			{DueDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), IsPaid: true},
			{DueDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
			{DueDate: time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)},
			{DueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	assert.True(t, plan.IsOverdue(today))
	assert.Equal(t, 2, plan.OverdueCount(today))
}
