package services

import (
	"testing"
	"time"

	"dealerpro-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleRows(amounts ...string) []models.PaymentSchedule {
	rows := make([]models.PaymentSchedule, 0, len(amounts))
	for i, a := range amounts {
		rows = append(rows, models.PaymentSchedule{
			InstallmentNumber: i + 1,
			DueDate:           time.Date(2025, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			AmountDue:         decimal.RequireFromString(a),
			AmountPaid:        decimal.Zero,
		})
	}
	return rows
}

func TestAllocateOldestFirst(t *testing.T) {
	rows := scheduleRows("40", "60")
	paidOn := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	modified := allocate(rows, decimal.NewFromInt(50), paidOn)
	assert.Equal(t, []int{0, 1}, modified)

	assert.True(t, rows[0].IsPaid)
	assert.False(t, rows[0].IsPartial)
	require.NotNil(t, rows[0].PaidDate)
	assert.Equal(t, paidOn, *rows[0].PaidDate)
	assert.True(t, rows[0].AmountPaid.Equal(decimal.NewFromInt(40)))

	assert.False(t, rows[1].IsPaid)
	assert.True(t, rows[1].IsPartial)
	assert.True(t, rows[1].AmountPaid.Equal(decimal.NewFromInt(10)))
	assert.True(t, rows[1].RemainingAmount().Equal(decimal.NewFromInt(50)))
}

func TestAllocateSkipsPaidRows(t *testing.T) {
	rows := scheduleRows("40", "60", "60")
	rows[0].IsPaid = true
	rows[0].AmountPaid = decimal.NewFromInt(40)

	modified := allocate(rows, decimal.NewFromInt(60), time.Now())
	assert.Equal(t, []int{1}, modified)
	assert.True(t, rows[1].IsPaid)
	assert.True(t, rows[2].AmountPaid.IsZero())
}

func TestAllocateExactBalanceSettlesAll(t *testing.T) {
	rows := scheduleRows("8333.33", "8333.33", "8333.34")

	allocate(rows, decimal.RequireFromString("25000"), time.Now())
	for i := range rows {
		assert.True(t, rows[i].IsPaid, "row %d", i+1)
		assert.False(t, rows[i].IsPartial, "row %d", i+1)
	}
	assert.True(t, allPaid(rows))
}

func TestResetAndReplay(t *testing.T) {
	rows := scheduleRows("40", "60")
	jan5 := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	jan9 := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)

	allocate(rows, decimal.NewFromInt(30), jan5)
	allocate(rows, decimal.NewFromInt(40), jan9)
	require.True(t, rows[0].IsPaid)
	require.True(t, rows[1].AmountPaid.Equal(decimal.NewFromInt(30)))

	// drop the first payment: the 40 alone fully covers row one only
	resetRows(rows)
	for i := range rows {
		assert.True(t, rows[i].AmountPaid.IsZero())
		assert.False(t, rows[i].IsPaid)
		assert.False(t, rows[i].IsPartial)
		assert.Nil(t, rows[i].PaidDate)
	}

	replayAllocations(rows, []models.Payment{
		{Amount: decimal.NewFromInt(40), PaymentDate: jan9},
	})
	assert.True(t, rows[0].IsPaid)
	require.NotNil(t, rows[0].PaidDate)
	assert.Equal(t, jan9, *rows[0].PaidDate)
	assert.True(t, rows[1].AmountPaid.IsZero())
}

func TestOutstandingAmount(t *testing.T) {
	purchase := &models.Purchase{Balance: decimal.NewFromInt(500)}
	rows := scheduleRows("40", "60")
	rows[0].AmountPaid = decimal.NewFromInt(15)
	rows[0].IsPartial = true

	// no plan: the purchase balance stands
	assert.True(t, outstandingAmount(purchase, nil, nil).Equal(decimal.NewFromInt(500)))

	// cancelled plan behaves like no plan
	cancelled := &models.InstallmentPlan{Status: models.PlanCancelled}
	assert.True(t, outstandingAmount(purchase, cancelled, rows).Equal(decimal.NewFromInt(500)))

	// active plan: unpaid remainder of the schedule
	active := &models.InstallmentPlan{Status: models.PlanActive}
	assert.True(t, outstandingAmount(purchase, active, rows).Equal(decimal.NewFromInt(85)))
}

func TestValidatePaymentInput(t *testing.T) {
	purchase := &models.Purchase{Balance: decimal.NewFromInt(100)}
	plan := &models.InstallmentPlan{Status: models.PlanActive}
	rows := scheduleRows("40", "60")
	now := time.Now()

	valid := PaymentInput{
		Amount:      decimal.NewFromInt(50),
		PaymentDate: now,
		Method:      models.MethodCash,
	}
	assert.NoError(t, validatePaymentInput(purchase, plan, rows, valid))

	tests := []struct {
		name    string
		mutate  func(*PaymentInput)
		wantErr string
	}{
		{"zero amount", func(in *PaymentInput) {
			in.Amount = decimal.Zero
		}, "greater than zero"},
		{"unknown method", func(in *PaymentInput) {
			in.Method = "barter"
		}, "invalid payment method"},
		{"mpesa without reference", func(in *PaymentInput) {
			in.Method = models.MethodMpesa
		}, "reference is required"},
		{"future date", func(in *PaymentInput) {
			in.PaymentDate = now.AddDate(0, 0, 2)
		}, "future"},
		{"stale date", func(in *PaymentInput) {
			in.PaymentDate = now.AddDate(-1, -1, 0)
		}, "one year"},
		{"overpayment", func(in *PaymentInput) {
			in.Amount = decimal.NewFromInt(101)
		}, "exceeds outstanding balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := validatePaymentInput(purchase, plan, rows, in)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReceiptNumbers(t *testing.T) {
	date := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "RCP-20250407-0001", FormatReceiptNumber(date, 1))
	assert.Equal(t, "RCP-20250407-0042", FormatReceiptNumber(date, 42))
	assert.Equal(t, "RCP-20250407-10000", FormatReceiptNumber(date, 10000))

	assert.Equal(t, 2, nextReceiptSeq("RCP-20250407-0001"))
	assert.Equal(t, 100, nextReceiptSeq("RCP-20250407-0099"))
	// sequence keeps counting once the padded width is exceeded
	assert.Equal(t, 10000, nextReceiptSeq("RCP-20250407-9999"))
	assert.Equal(t, 10001, nextReceiptSeq("RCP-20250407-10000"))
	assert.Equal(t, 1, nextReceiptSeq("garbage"))
	assert.Equal(t, 1, nextReceiptSeq("RCP-20250407-xx"))
}
