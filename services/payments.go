// services/payments.go
package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentInput is what a handler collects before recording a payment.
type PaymentInput struct {
	PurchaseID  uuid.UUID
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	Reference   string
	Notes       string
}

// ApplyPayment records a payment and walks it through the purchase's
// schedule: validate, create the receipt, allocate oldest-first, recompute
// the purchase aggregates, then cascade completion. Everything happens in
// one transaction with the purchase, plan and schedule rows locked.
func ApplyPayment(db *gorm.DB, dealershipID uuid.UUID, actor *models.User, input PaymentInput) (*models.Payment, error) {
	var payment *models.Payment

	err := db.Transaction(func(tx *gorm.DB) error {
		var purchase models.Purchase
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(models.ForDealership(dealershipID)).
			First(&purchase, "id = ?", input.PurchaseID).Error; err != nil {
			return err
		}

		plan, rows, err := lockPlanWithRows(tx, purchase.ID)
		if err != nil {
			return err
		}

		if err := validatePaymentInput(&purchase, plan, rows, input); err != nil {
			return err
		}

		receipt, err := nextReceiptNumber(tx, dealershipID, input.PaymentDate)
		if err != nil {
			return err
		}

		p := models.Payment{
			ID:            uuid.New(),
			DealershipID:  dealershipID,
			PurchaseID:    purchase.ID,
			ReceiptNumber: receipt,
			Amount:        input.Amount,
			PaymentDate:   input.PaymentDate,
			Method:        input.Method,
			Reference:     input.Reference,
			Notes:         input.Notes,
		}
		if plan != nil {
			p.PlanID = &plan.ID
		}
		if actor != nil {
			p.ReceivedByID = actor.ID
			p.ReceivedByName = actor.Name
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if plan != nil && plan.Status != models.PlanCancelled {
			modified := allocate(rows, input.Amount, input.PaymentDate)
			if err := saveRows(tx, rows, modified); err != nil {
				return err
			}
		}

		if err := recalcPurchase(tx, &purchase); err != nil {
			return err
		}
		if err := tx.Save(&purchase).Error; err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}

		if err := syncCompletion(tx, &purchase, plan, rows, input.PaymentDate); err != nil {
			return err
		}

		payment = &p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dealership": dealershipID,
		"purchase":   input.PurchaseID,
		"receipt":    payment.ReceiptNumber,
		"amount":     payment.Amount.String(),
		"method":     payment.Method,
	}).Info("payment recorded")

	return payment, nil
}

// DeletePayment removes a payment and rebuilds the schedule state by
// replaying the purchase's remaining payments oldest-first.
func DeletePayment(db *gorm.DB, dealershipID uuid.UUID, paymentID uuid.UUID) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.Scopes(models.ForDealership(dealershipID)).
			First(&p, "id = ?", paymentID).Error; err != nil {
			return err
		}

		var purchase models.Purchase
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&purchase, "id = ?", p.PurchaseID).Error; err != nil {
			return err
		}

		plan, rows, err := lockPlanWithRows(tx, purchase.ID)
		if err != nil {
			return err
		}

		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}

		if plan != nil {
			var remaining []models.Payment
			if err := tx.Where("purchase_id = ?", purchase.ID).
				Order("payment_date, created_at").Find(&remaining).Error; err != nil {
				return fmt.Errorf("load payments: %w", err)
			}
			resetRows(rows)
			replayAllocations(rows, remaining)
			if err := saveAllRows(tx, rows); err != nil {
				return err
			}
		}

		if err := recalcPurchase(tx, &purchase); err != nil {
			return err
		}
		if err := tx.Save(&purchase).Error; err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}

		return syncCompletion(tx, &purchase, plan, rows, time.Now())
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"dealership": dealershipID,
		"payment":    paymentID,
	}).Info("payment reversed")

	return nil
}

func lockPlanWithRows(tx *gorm.DB, purchaseID uuid.UUID) (*models.InstallmentPlan, []models.PaymentSchedule, error) {
	var plan models.InstallmentPlan
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&plan, "purchase_id = ?", purchaseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load plan: %w", err)
	}

	var rows []models.PaymentSchedule
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("plan_id = ?", plan.ID).
		Order("installment_number").Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("load schedule: %w", err)
	}
	return &plan, rows, nil
}

func validatePaymentInput(purchase *models.Purchase, plan *models.InstallmentPlan, rows []models.PaymentSchedule, input PaymentInput) error {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return validationErrorf("payment amount must be greater than zero")
	}
	if !models.ValidPaymentMethod(input.Method) {
		return validationErrorf("invalid payment method %q", input.Method)
	}
	if models.ReferenceRequired(input.Method) && strings.TrimSpace(input.Reference) == "" {
		return validationErrorf("reference is required for %s payments", input.Method)
	}

	now := time.Now()
	if input.PaymentDate.After(utils.EndOfDay(now)) {
		return validationErrorf("payment date cannot be in the future")
	}
	if input.PaymentDate.Before(now.AddDate(-1, 0, 0)) {
		return validationErrorf("payment date cannot be more than one year in the past")
	}

	outstanding := outstandingAmount(purchase, plan, rows)
	if input.Amount.GreaterThan(outstanding) {
		return validationErrorf("payment of %s exceeds outstanding balance of %s",
			input.Amount.StringFixed(2), outstanding.StringFixed(2))
	}
	return nil
}

// outstandingAmount is what the client still owes. With an active plan that
// is the unpaid remainder of the schedule (which carries the interest);
// otherwise the purchase balance.
func outstandingAmount(purchase *models.Purchase, plan *models.InstallmentPlan, rows []models.PaymentSchedule) decimal.Decimal {
	if plan == nil || plan.Status == models.PlanCancelled {
		return purchase.Balance
	}
	outstanding := decimal.Zero
	for i := range rows {
		outstanding = outstanding.Add(rows[i].RemainingAmount())
	}
	return outstanding
}

// allocate walks unpaid rows in installment order applying the amount
// oldest-first. Returns the indices of rows it modified.
func allocate(rows []models.PaymentSchedule, amount decimal.Decimal, paidOn time.Time) []int {
	var modified []int
	remaining := amount

	for i := range rows {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		row := &rows[i]
		if row.IsPaid {
			continue
		}

		due := row.RemainingAmount()
		if due.LessThanOrEqual(decimal.Zero) {
			continue
		}

		applied := decimal.Min(remaining, due)
		row.AmountPaid = row.AmountPaid.Add(applied)
		remaining = remaining.Sub(applied)

		if row.AmountPaid.GreaterThanOrEqual(row.AmountDue) {
			row.IsPaid = true
			row.IsPartial = false
			paid := paidOn
			row.PaidDate = &paid
		} else {
			row.IsPartial = true
		}
		modified = append(modified, i)
	}
	return modified
}

func resetRows(rows []models.PaymentSchedule) {
	for i := range rows {
		rows[i].AmountPaid = decimal.Zero
		rows[i].IsPaid = false
		rows[i].IsPartial = false
		rows[i].PaidDate = nil
	}
}

func replayAllocations(rows []models.PaymentSchedule, payments []models.Payment) {
	for i := range payments {
		allocate(rows, payments[i].Amount, payments[i].PaymentDate)
	}
}

func saveRows(tx *gorm.DB, rows []models.PaymentSchedule, indices []int) error {
	for _, i := range indices {
		if err := tx.Save(&rows[i]).Error; err != nil {
			return fmt.Errorf("update schedule row %d: %w", rows[i].InstallmentNumber, err)
		}
	}
	return nil
}

func saveAllRows(tx *gorm.DB, rows []models.PaymentSchedule) error {
	for i := range rows {
		if err := tx.Save(&rows[i]).Error; err != nil {
			return fmt.Errorf("update schedule row %d: %w", rows[i].InstallmentNumber, err)
		}
	}
	return nil
}

func recalcPurchase(tx *gorm.DB, purchase *models.Purchase) error {
	var totalPaid decimal.Decimal
	row := tx.Model(&models.Payment{}).
		Where("purchase_id = ?", purchase.ID).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&totalPaid); err != nil {
		return fmt.Errorf("sum payments: %w", err)
	}

	purchase.TotalPaid = totalPaid
	balance := purchase.PurchasePrice.Sub(purchase.DepositPaid).Sub(totalPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	purchase.Balance = balance
	return nil
}

// syncCompletion cascades settled state up from the schedule: plan
// completed, purchase paid off, client completed once nothing else is
// outstanding. Also walks the cascade back after a reversal.
func syncCompletion(tx *gorm.DB, purchase *models.Purchase, plan *models.InstallmentPlan, rows []models.PaymentSchedule, when time.Time) error {
	settled := purchase.Balance.IsZero()
	if plan != nil && plan.Status != models.PlanCancelled {
		settled = len(rows) > 0 && allPaid(rows)

		newStatus := plan.Status
		if settled {
			newStatus = models.PlanCompleted
		} else if plan.Status == models.PlanCompleted {
			newStatus = models.PlanActive
		}
		if newStatus != plan.Status {
			plan.Status = newStatus
			if err := tx.Model(plan).Update("status", newStatus).Error; err != nil {
				return fmt.Errorf("update plan status: %w", err)
			}
		}
	}

	if settled && !purchase.IsPaidOff {
		paidOff := when
		purchase.IsPaidOff = true
		purchase.DatePaidOff = &paidOff
		if err := tx.Model(purchase).
			Updates(map[string]interface{}{"is_paid_off": true, "date_paid_off": paidOff}).Error; err != nil {
			return fmt.Errorf("mark purchase paid off: %w", err)
		}
	} else if !settled && purchase.IsPaidOff {
		purchase.IsPaidOff = false
		purchase.DatePaidOff = nil
		if err := tx.Model(purchase).
			Updates(map[string]interface{}{"is_paid_off": false, "date_paid_off": nil}).Error; err != nil {
			return fmt.Errorf("unmark purchase paid off: %w", err)
		}
	}

	return syncClientStatus(tx, purchase, settled)
}

func syncClientStatus(tx *gorm.DB, purchase *models.Purchase, settled bool) error {
	var client models.Client
	if err := tx.First(&client, "id = ?", purchase.ClientID).Error; err != nil {
		return fmt.Errorf("load client: %w", err)
	}

	var outstanding int64
	if err := tx.Model(&models.Purchase{}).
		Where("client_id = ? AND is_paid_off = ?", client.ID, false).
		Count(&outstanding).Error; err != nil {
		return fmt.Errorf("count open purchases: %w", err)
	}

	if settled && outstanding == 0 &&
		(client.Status == models.ClientActive || client.Status == models.ClientDefaulted) {
		return tx.Model(&client).Update("status", models.ClientCompleted).Error
	}
	if !settled && client.Status == models.ClientCompleted {
		return tx.Model(&client).Update("status", models.ClientActive).Error
	}
	return nil
}

func allPaid(rows []models.PaymentSchedule) bool {
	for i := range rows {
		if !rows[i].IsPaid {
			return false
		}
	}
	return true
}

// replayPurchasePayments re-applies every payment of the plan's purchase
// against freshly generated rows, used by forced regeneration.
func replayPurchasePayments(tx *gorm.DB, plan *models.InstallmentPlan, rows []models.PaymentSchedule) error {
	var payments []models.Payment
	if err := tx.Where("purchase_id = ?", plan.PurchaseID).
		Order("payment_date, created_at").Find(&payments).Error; err != nil {
		return fmt.Errorf("load payments: %w", err)
	}

	replayAllocations(rows, payments)
	if err := saveAllRows(tx, rows); err != nil {
		return err
	}

	var purchase models.Purchase
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&purchase, "id = ?", plan.PurchaseID).Error; err != nil {
		return fmt.Errorf("load purchase: %w", err)
	}
	if err := recalcPurchase(tx, &purchase); err != nil {
		return err
	}
	if err := tx.Save(&purchase).Error; err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	return syncCompletion(tx, &purchase, plan, rows, time.Now())
}

const receiptPrefix = "RCP"

// FormatReceiptNumber renders RCP-YYYYMMDD-NNNN.
func FormatReceiptNumber(date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", receiptPrefix, date.Format("20060102"), seq)
}

// nextReceiptSeq parses the trailing sequence of a receipt number.
func nextReceiptSeq(lastReceipt string) int {
	parts := strings.Split(lastReceipt, "-")
	if len(parts) != 3 {
		return 1
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return 1
	}
	return n + 1
}

func nextReceiptNumber(tx *gorm.DB, dealershipID uuid.UUID, date time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", receiptPrefix, date.Format("20060102"))

	// length before value: once %04d widens past 9999 a plain string sort
	// would put RCP-...-10000 below RCP-...-9999
	var last models.Payment
	err := tx.Scopes(models.ForDealership(dealershipID)).
		Where("receipt_number LIKE ?", prefix+"%").
		Order("length(receipt_number) DESC, receipt_number DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FormatReceiptNumber(date, 1), nil
	}
	if err != nil {
		return "", fmt.Errorf("last receipt: %w", err)
	}
	return FormatReceiptNumber(date, nextReceiptSeq(last.ReceiptNumber)), nil
}
