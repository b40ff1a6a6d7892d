// services/schedule.go
package services

import (
	"fmt"
	"time"

	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var oneUnit = decimal.NewFromInt(1)

// ValidatePlanTerms enforces the plan invariants before anything is written.
func ValidatePlanTerms(plan *models.InstallmentPlan) error {
	if plan.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return validationErrorf("total amount must be greater than zero")
	}
	if plan.DepositAmount.IsNegative() {
		return validationErrorf("deposit cannot be negative")
	}
	if plan.DepositAmount.GreaterThanOrEqual(plan.TotalAmount) {
		return validationErrorf("deposit must be less than total amount")
	}
	if plan.NumberOfInstallments < models.MinInstallments || plan.NumberOfInstallments > models.MaxInstallments {
		return validationErrorf("number of installments must be between %d and %d",
			models.MinInstallments, models.MaxInstallments)
	}
	if plan.InterestRate.IsNegative() || plan.InterestRate.GreaterThan(decimal.NewFromInt(100)) {
		return validationErrorf("interest rate must be between 0 and 100")
	}
	if plan.PaymentDay < 1 || plan.PaymentDay > 31 {
		return validationErrorf("payment day must be between 1 and 31")
	}
	if plan.StartDate.IsZero() {
		return validationErrorf("start date is required")
	}
	return nil
}

// PlanConsistent checks that the derived monthly amount reproduces the plan
// total to within one currency unit.
func PlanConsistent(plan *models.InstallmentPlan) bool {
	total := plan.TotalWithInterest()
	derived := plan.MonthlyInstallment().Mul(decimal.NewFromInt(int64(plan.NumberOfInstallments)))
	return total.Sub(derived).Abs().LessThanOrEqual(oneUnit)
}

// GenerateScheduleRows builds the full installment schedule for a plan.
// Pure: nothing is persisted. Due dates fall at one-month increments from
// the start date, pinned to the plan's payment day. Every row carries the
// monthly installment except the last, which absorbs the rounding remainder
// so the rows always sum to TotalWithInterest exactly.
func GenerateScheduleRows(plan *models.InstallmentPlan) []models.PaymentSchedule {
	n := plan.NumberOfInstallments
	if n <= 0 {
		return nil
	}

	total := plan.TotalWithInterest()
	per := plan.MonthlyInstallment()
	last := total.Sub(per.Mul(decimal.NewFromInt(int64(n - 1))))

	rows := make([]models.PaymentSchedule, 0, n)
	for i := 1; i <= n; i++ {
		amount := per
		if i == n {
			amount = last
		}
		rows = append(rows, models.PaymentSchedule{
			ID:                uuid.New(),
			DealershipID:      plan.DealershipID,
			PlanID:            plan.ID,
			InstallmentNumber: i,
			DueDate:           utils.AddMonthsClamped(plan.StartDate, i, plan.PaymentDay),
			AmountDue:         amount,
			AmountPaid:        decimal.Zero,
		})
	}
	return rows
}

// RegenerateSchedule replaces a plan's schedule rows inside the caller's
// transaction. Refused once any row holds payments unless force is set;
// with force the purchase's payments are replayed against the fresh rows.
func RegenerateSchedule(tx *gorm.DB, plan *models.InstallmentPlan, force bool) error {
	var rows []models.PaymentSchedule
	if err := tx.Where("plan_id = ?", plan.ID).
		Order("installment_number").Find(&rows).Error; err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}

	for _, row := range rows {
		if row.AmountPaid.GreaterThan(decimal.Zero) && !force {
			return validationErrorf("schedule has recorded payments; regenerate with force to replay them")
		}
	}

	if len(rows) > 0 {
		if err := tx.Where("plan_id = ?", plan.ID).
			Delete(&models.PaymentSchedule{}).Error; err != nil {
			return fmt.Errorf("clear schedule: %w", err)
		}
	}

	fresh := GenerateScheduleRows(plan)
	if len(fresh) > 0 {
		if err := tx.Create(&fresh).Error; err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
	}

	if force {
		if err := replayPurchasePayments(tx, plan, fresh); err != nil {
			return err
		}
	}
	return nil
}

// NextDueRow returns the first unpaid row, or nil when the plan is settled.
func NextDueRow(rows []models.PaymentSchedule) *models.PaymentSchedule {
	for i := range rows {
		if !rows[i].IsPaid {
			return &rows[i]
		}
	}
	return nil
}

// UpcomingRows filters rows falling due within days of today.
func UpcomingRows(rows []models.PaymentSchedule, today time.Time, days int) []models.PaymentSchedule {
	start := utils.BeginningOfDay(today)
	end := start.AddDate(0, 0, days)
	var out []models.PaymentSchedule
	for _, row := range rows {
		if row.IsPaid {
			continue
		}
		if !row.DueDate.Before(start) && row.DueDate.Before(end) {
			out = append(out, row)
		}
	}
	return out
}
