package services

import (
	"testing"
	"time"

	"dealerpro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlan(total, deposit string, n int, rate string, start time.Time, paymentDay int) *models.InstallmentPlan {
	return &models.InstallmentPlan{
		ID:                   uuid.New(),
		DealershipID:         uuid.New(),
		PurchaseID:           uuid.New(),
		TotalAmount:          decimal.RequireFromString(total),
		DepositAmount:        decimal.RequireFromString(deposit),
		NumberOfInstallments: n,
		InterestRate:         decimal.RequireFromString(rate),
		StartDate:            start,
		PaymentDay:           paymentDay,
		Status:               models.PlanActive,
	}
}

func TestGenerateScheduleRowsZeroInterest(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	plan := testPlan("120000", "20000", 12, "0", start, 15)

	rows := GenerateScheduleRows(plan)
	require.Len(t, rows, 12)

	// 100000 financed over 12: eleven rows of 8333.33, final absorbs the
	// remainder
	for i := 0; i < 11; i++ {
		assert.True(t, rows[i].AmountDue.Equal(decimal.RequireFromString("8333.33")),
			"row %d got %s", i+1, rows[i].AmountDue)
	}
	assert.True(t, rows[11].AmountDue.Equal(decimal.RequireFromString("8333.37")),
		"final row got %s", rows[11].AmountDue)

	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(row.AmountDue)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(100000)), "rows sum to %s", sum)
}

func TestGenerateScheduleRowsSimpleInterest(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	plan := testPlan("500000", "100000", 24, "10", start, 1)

	// 400000 * 10% * 24/12 = 80000 interest
	assert.True(t, plan.TotalWithInterest().Equal(decimal.NewFromInt(480000)))

	rows := GenerateScheduleRows(plan)
	require.Len(t, rows, 24)

	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(row.AmountDue)
	}
	assert.True(t, sum.Equal(plan.TotalWithInterest()),
		"rows sum %s != total %s", sum, plan.TotalWithInterest())
}

func TestGenerateScheduleRowsDueDates(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	plan := testPlan("60000", "0", 4, "0", start, 31)

	rows := GenerateScheduleRows(plan)
	require.Len(t, rows, 4)

	// Feb clamps to its last day, longer months return to the 31st
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), rows[0].DueDate)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), rows[1].DueDate)
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), rows[2].DueDate)
	assert.Equal(t, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), rows[3].DueDate)

	for i, row := range rows {
		assert.Equal(t, i+1, row.InstallmentNumber)
	}
}

func TestGenerateScheduleRowsIdempotent(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	plan := testPlan("350000", "50000", 18, "7.5", start, 10)

	first := GenerateScheduleRows(plan)
	second := GenerateScheduleRows(plan)
	require.Equal(t, len(first), len(second))

	for i := range first {
		assert.Equal(t, first[i].InstallmentNumber, second[i].InstallmentNumber)
		assert.Equal(t, first[i].DueDate, second[i].DueDate)
		assert.True(t, first[i].AmountDue.Equal(second[i].AmountDue),
			"row %d: %s vs %s", i+1, first[i].AmountDue, second[i].AmountDue)
	}
}

func TestValidatePlanTerms(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*models.InstallmentPlan)
		wantErr string
	}{
		{"valid", func(p *models.InstallmentPlan) {}, ""},
		{"zero total", func(p *models.InstallmentPlan) {
			p.TotalAmount = decimal.Zero
		}, "total amount"},
		{"negative deposit", func(p *models.InstallmentPlan) {
			p.DepositAmount = decimal.NewFromInt(-1)
		}, "deposit cannot be negative"},
		{"deposit equals total", func(p *models.InstallmentPlan) {
			p.DepositAmount = p.TotalAmount
		}, "deposit must be less than total"},
		{"zero installments", func(p *models.InstallmentPlan) {
			p.NumberOfInstallments = 0
		}, "number of installments"},
		{"too many installments", func(p *models.InstallmentPlan) {
			p.NumberOfInstallments = 121
		}, "number of installments"},
		{"rate above 100", func(p *models.InstallmentPlan) {
			p.InterestRate = decimal.NewFromInt(101)
		}, "interest rate"},
		{"payment day 0", func(p *models.InstallmentPlan) {
			p.PaymentDay = 0
		}, "payment day"},
		{"no start date", func(p *models.InstallmentPlan) {
			p.StartDate = time.Time{}
		}, "start date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := testPlan("120000", "20000", 12, "5", start, 1)
			tt.mutate(plan)

			err := ValidatePlanTerms(plan)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPlanConsistent(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// The derived monthly always reproduces the total within one unit,
	// whatever the split
	for _, n := range []int{1, 3, 7, 12, 36, 120} {
		plan := testPlan("123457.89", "10000", n, "13.25", start, 1)
		assert.True(t, PlanConsistent(plan), "n=%d", n)
	}
}

func TestNextDueRow(t *testing.T) {
	rows := []models.PaymentSchedule{
		{InstallmentNumber: 1, IsPaid: true},
		{InstallmentNumber: 2, IsPaid: false},
		{InstallmentNumber: 3, IsPaid: false},
	}

	next := NextDueRow(rows)
	require.NotNil(t, next)
	assert.Equal(t, 2, next.InstallmentNumber)

	rows[1].IsPaid = true
	rows[2].IsPaid = true
	assert.Nil(t, NextDueRow(rows))
}

func TestUpcomingRows(t *testing.T) {
	today := time.Date(2025, 5, 10, 14, 30, 0, 0, time.UTC)
	rows := []models.PaymentSchedule{
		{InstallmentNumber: 1, DueDate: time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC)},                // past
		{InstallmentNumber: 2, DueDate: time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)},               // within 3 days
		{InstallmentNumber: 3, DueDate: time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC), IsPaid: true}, // paid
		{InstallmentNumber: 4, DueDate: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)},               // beyond
	}

	upcoming := UpcomingRows(rows, today, 3)
	require.Len(t, upcoming, 1)
	assert.Equal(t, 2, upcoming[0].InstallmentNumber)
}
