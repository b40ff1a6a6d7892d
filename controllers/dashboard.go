package controllers

import (
	"net/http"
	"time"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OverdueSummary struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type UpcomingInstallment struct {
	ClientName        string          `json:"clientName"`
	InstallmentNumber int             `json:"installmentNumber"`
	AmountDue         decimal.Decimal `json:"amountDue"`
	DueDate           time.Time       `json:"dueDate"`
}

type RecentPayment struct {
	ReceiptNumber string          `json:"receiptNumber"`
	ClientName    string          `json:"clientName"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	PaymentDate   time.Time       `json:"paymentDate"`
}

// GetDashboardOverview assembles the landing-page numbers: fleet status,
// active clients and plans, month-to-date collections, arrears and the
// week's upcoming dues.
func GetDashboardOverview(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	// Vehicles by status
	vehiclesByStatus := map[string]int64{}
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	config.DB.Model(&models.Vehicle{}).
		Select("status, COUNT(*) as count").
		Where("dealership_id = ? AND deleted_at IS NULL", dealershipID).
		Group("status").Scan(&counts)
	for _, sc := range counts {
		vehiclesByStatus[sc.Status] = sc.Count
	}

	var activeClients int64
	config.DB.Model(&models.Client{}).
		Where("dealership_id = ? AND status = ? AND deleted_at IS NULL", dealershipID, models.ClientActive).
		Count(&activeClients)

	var activePlans int64
	config.DB.Model(&models.InstallmentPlan{}).
		Where("dealership_id = ? AND status = ? AND deleted_at IS NULL", dealershipID, models.PlanActive).
		Count(&activePlans)

	// Month-to-date collections
	now := time.Now()
	firstOfMonth := utils.BeginningOfMonth(now)
	var monthCollections decimal.Decimal
	config.DB.Model(&models.Payment{}).
		Where("dealership_id = ? AND payment_date >= ?", dealershipID, firstOfMonth).
		Select("COALESCE(SUM(amount), 0)").Scan(&monthCollections)

	// Outstanding balance across open purchases
	var outstanding decimal.Decimal
	config.DB.Model(&models.Purchase{}).
		Where("dealership_id = ? AND is_paid_off = ? AND deleted_at IS NULL", dealershipID, false).
		Select("COALESCE(SUM(balance), 0)").Scan(&outstanding)

	today := utils.BeginningOfDay(now)

	// Overdue installments on active plans
	var overdue OverdueSummary
	config.DB.Raw(`
		SELECT COUNT(*) as count,
		       COALESCE(SUM(ps.amount_due - ps.amount_paid), 0) as amount
		FROM payment_schedules ps
		JOIN installment_plans ip ON ip.id = ps.plan_id
		WHERE ps.dealership_id = ?
		AND ps.is_paid = false
		AND ps.due_date < ?
		AND ip.status = ?
		AND ip.deleted_at IS NULL
	`, dealershipID, today, models.PlanActive).Scan(&overdue)

	// Installments falling due within 7 days
	var upcoming []UpcomingInstallment
	config.DB.Raw(`
		SELECT c.first_name || ' ' || c.last_name as client_name,
		       ps.installment_number, ps.amount_due, ps.due_date
		FROM payment_schedules ps
		JOIN installment_plans ip ON ip.id = ps.plan_id
		JOIN purchases p ON p.id = ip.purchase_id
		JOIN clients c ON c.id = p.client_id
		WHERE ps.dealership_id = ?
		AND ps.is_paid = false
		AND ps.due_date >= ? AND ps.due_date < ?
		AND ip.status = ?
		AND ip.deleted_at IS NULL
		ORDER BY ps.due_date
		LIMIT 10
	`, dealershipID, today, today.AddDate(0, 0, 7), models.PlanActive).Scan(&upcoming)

	// Last 5 payments
	var recentPayments []RecentPayment
	config.DB.Raw(`
		SELECT pm.receipt_number,
		       c.first_name || ' ' || c.last_name as client_name,
		       pm.amount, pm.method, pm.payment_date
		FROM payments pm
		JOIN purchases p ON p.id = pm.purchase_id
		JOIN clients c ON c.id = p.client_id
		WHERE pm.dealership_id = ?
		ORDER BY pm.payment_date DESC, pm.created_at DESC
		LIMIT 5
	`, dealershipID).Scan(&recentPayments)

	var pendingReminders int64
	config.DB.Model(&models.PaymentReminder{}).
		Where("dealership_id = ? AND status = ?", dealershipID, models.ReminderPending).
		Count(&pendingReminders)

	c.JSON(http.StatusOK, gin.H{
		"vehiclesByStatus":     vehiclesByStatus,
		"activeClients":        activeClients,
		"activePlans":          activePlans,
		"monthCollections":     monthCollections,
		"outstandingBalance":   outstanding,
		"overdueInstallments":  overdue,
		"upcomingInstallments": upcoming,
		"recentPayments":       recentPayments,
		"pendingReminders":     pendingReminders,
	})
}

// dealershipCurrency is a small helper for report endpoints.
func dealershipCurrency(dealershipID uuid.UUID) string {
	var settings models.SystemSettings
	if err := config.DB.Where("dealership_id = ?", dealershipID).
		First(&settings).Error; err != nil {
		return "KES"
	}
	return settings.Currency
}
