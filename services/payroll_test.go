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

func TestBuildPayslip(t *testing.T) {
	emp := &models.Employee{
		ID:           uuid.New(),
		DealershipID: uuid.New(),
		FirstName:    "Grace",
		LastName:     "Mwangi",
		BasicSalary:  decimal.NewFromInt(85000),
		Allowances:   decimal.NewFromInt(15000),
	}
	generatedBy := uuid.New()
	month := time.Date(2025, 8, 17, 11, 0, 0, 0, time.UTC)

	slip, err := BuildPayslip(emp, month, decimal.NewFromInt(12000), generatedBy)
	require.NoError(t, err)

	assert.Equal(t, emp.ID, slip.EmployeeID)
	assert.Equal(t, emp.DealershipID, slip.DealershipID)
	assert.Equal(t, generatedBy, slip.GeneratedByID)
	assert.Equal(t, models.PayslipDraft, slip.Status)
	// month is normalised to its first day
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), slip.Month)
	assert.True(t, slip.GrossPay.Equal(decimal.NewFromInt(100000)))
	assert.True(t, slip.NetPay.Equal(decimal.NewFromInt(88000)))
}

func TestBuildPayslipRejectsBadDeductions(t *testing.T) {
	emp := &models.Employee{
		FirstName:   "Grace",
		LastName:    "Mwangi",
		BasicSalary: decimal.NewFromInt(50000),
		Allowances:  decimal.Zero,
	}

	_, err := BuildPayslip(emp, time.Now(), decimal.NewFromInt(-1), uuid.Nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "cannot be negative")

	_, err = BuildPayslip(emp, time.Now(), decimal.NewFromInt(50001), uuid.Nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "exceed gross pay")
}
