// services/payroll.go
package services

import (
	"time"

	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildPayslip computes one employee's payslip for a month.
// Gross = basic + allowances; net = gross - deductions.
func BuildPayslip(employee *models.Employee, month time.Time, deductions decimal.Decimal, generatedBy uuid.UUID) (models.Payslip, error) {
	if deductions.IsNegative() {
		return models.Payslip{}, validationErrorf("deductions cannot be negative")
	}

	gross := employee.BasicSalary.Add(employee.Allowances)
	net := gross.Sub(deductions)
	if net.IsNegative() {
		return models.Payslip{}, validationErrorf("deductions of %s exceed gross pay of %s for %s",
			deductions.StringFixed(2), gross.StringFixed(2), employee.FullName())
	}

	return models.Payslip{
		ID:            uuid.New(),
		DealershipID:  employee.DealershipID,
		EmployeeID:    employee.ID,
		Month:         utils.BeginningOfMonth(month),
		BasicSalary:   employee.BasicSalary,
		Allowances:    employee.Allowances,
		Deductions:    deductions,
		GrossPay:      gross,
		NetPay:        net,
		Status:        models.PayslipDraft,
		GeneratedByID: generatedBy,
	}, nil
}
