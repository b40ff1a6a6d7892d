// controllers/report.go
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

// ReportController handles all reporting functions
type ReportController struct{}

type MonthlyCollection struct {
	Month  string          `json:"month"` // YYYY-MM
	Amount decimal.Decimal `json:"amount"`
}

type CollectionMonth struct {
	Month     string          `json:"month"`
	Expected  decimal.Decimal `json:"expected"`
	Collected decimal.Decimal `json:"collected"`
	Rate      decimal.Decimal `json:"rate"` // percent
}

type DefaulterSummary struct {
	ClientID      uuid.UUID       `json:"clientId"`
	ClientName    string          `json:"clientName"`
	Phone         string          `json:"phone"`
	OverdueCount  int             `json:"overdueCount"`
	OverdueAmount decimal.Decimal `json:"overdueAmount"`
	OldestDueDate time.Time       `json:"oldestDueDate"`
	DaysInArrears int             `json:"daysInArrears"`
}

type VehicleSales struct {
	Make    string          `json:"make"`
	Month   string          `json:"month"`
	Units   int             `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// GetRevenueReport returns monthly collections over the trailing twelve
// months plus quarter totals and growth against the previous period.
func (rc *ReportController) GetRevenueReport(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	now := time.Now()
	firstOfMonth := utils.BeginningOfMonth(now)

	monthly := make([]MonthlyCollection, 0, 12)
	for i := 11; i >= 0; i-- {
		start := firstOfMonth.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		monthly = append(monthly, MonthlyCollection{
			Month:  start.Format("2006-01"),
			Amount: rc.collectedBetween(dealershipID, start, end),
		})
	}

	quarterStart := rc.quarterStart(now)
	currentQuarter := rc.collectedBetween(dealershipID, quarterStart, quarterStart.AddDate(0, 3, 0))
	previousQuarter := rc.collectedBetween(dealershipID, quarterStart.AddDate(0, -3, 0), quarterStart)

	currentMonth := monthly[len(monthly)-1].Amount
	previousMonth := monthly[len(monthly)-2].Amount

	c.JSON(http.StatusOK, gin.H{
		"currency":        dealershipCurrency(dealershipID),
		"monthly":         monthly,
		"currentMonth":    currentMonth,
		"monthGrowth":     rc.growthPercent(currentMonth, previousMonth),
		"currentQuarter":  currentQuarter,
		"previousQuarter": previousQuarter,
		"quarterGrowth":   rc.growthPercent(currentQuarter, previousQuarter),
	})
}

// GetCollectionsReport compares what fell due against what was collected
// per month for the trailing twelve months.
func (rc *ReportController) GetCollectionsReport(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	firstOfMonth := utils.BeginningOfMonth(time.Now())

	months := make([]CollectionMonth, 0, 12)
	for i := 11; i >= 0; i-- {
		start := firstOfMonth.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		var expected decimal.Decimal
		config.DB.Raw(`
			SELECT COALESCE(SUM(ps.amount_due), 0)
			FROM payment_schedules ps
			JOIN installment_plans ip ON ip.id = ps.plan_id
			WHERE ps.dealership_id = ?
			AND ps.due_date >= ? AND ps.due_date < ?
			AND ip.status != ?
			AND ip.deleted_at IS NULL
		`, dealershipID, start, end, models.PlanCancelled).Scan(&expected)

		collected := rc.collectedBetween(dealershipID, start, end)

		rate := decimal.Zero
		if expected.GreaterThan(decimal.Zero) {
			rate = collected.Div(expected).Mul(decimal.NewFromInt(100)).Round(1)
		}

		months = append(months, CollectionMonth{
			Month:     start.Format("2006-01"),
			Expected:  expected,
			Collected: collected,
			Rate:      rate,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"currency": dealershipCurrency(dealershipID),
		"months":   months,
	})
}

// GetDefaultersReport lists clients carrying overdue installments, worst
// arrears first.
func (rc *ReportController) GetDefaultersReport(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	today := utils.BeginningOfDay(time.Now())

	var defaulters []DefaulterSummary
	config.DB.Raw(`
		SELECT c.id as client_id,
		       c.first_name || ' ' || c.last_name as client_name,
		       c.phone,
		       COUNT(*) as overdue_count,
		       COALESCE(SUM(ps.amount_due - ps.amount_paid), 0) as overdue_amount,
		       MIN(ps.due_date) as oldest_due_date
		FROM payment_schedules ps
		JOIN installment_plans ip ON ip.id = ps.plan_id
		JOIN purchases p ON p.id = ip.purchase_id
		JOIN clients c ON c.id = p.client_id
		WHERE ps.dealership_id = ?
		AND ps.is_paid = false
		AND ps.due_date < ?
		AND ip.status IN (?, ?)
		AND ip.deleted_at IS NULL
		GROUP BY c.id, c.first_name, c.last_name, c.phone
		ORDER BY overdue_amount DESC
	`, dealershipID, today, models.PlanActive, models.PlanDefaulted).Scan(&defaulters)

	for i := range defaulters {
		defaulters[i].DaysInArrears = utils.DaysBetween(defaulters[i].OldestDueDate, today)
	}

	c.JSON(http.StatusOK, gin.H{
		"currency":   dealershipCurrency(dealershipID),
		"defaulters": defaulters,
	})
}

// GetVehicleSalesReport breaks sold units and revenue down by make and
// month for the trailing twelve months.
func (rc *ReportController) GetVehicleSalesReport(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	since := utils.BeginningOfMonth(time.Now()).AddDate(0, -11, 0)

	var sales []VehicleSales
	config.DB.Raw(`
		SELECT v.make,
		       TO_CHAR(p.purchase_date, 'YYYY-MM') as month,
		       COUNT(*) as units,
		       COALESCE(SUM(p.purchase_price), 0) as revenue
		FROM purchases p
		JOIN vehicles v ON v.id = p.vehicle_id
		WHERE p.dealership_id = ?
		AND p.purchase_date >= ?
		AND p.deleted_at IS NULL
		GROUP BY v.make, TO_CHAR(p.purchase_date, 'YYYY-MM')
		ORDER BY month, v.make
	`, dealershipID, since).Scan(&sales)

	c.JSON(http.StatusOK, gin.H{
		"currency": dealershipCurrency(dealershipID),
		"sales":    sales,
	})
}

func (rc *ReportController) collectedBetween(dealershipID uuid.UUID, start, end time.Time) decimal.Decimal {
	var total decimal.Decimal
	config.DB.Model(&models.Payment{}).
		Where("dealership_id = ? AND payment_date >= ? AND payment_date < ?", dealershipID, start, end).
		Select("COALESCE(SUM(amount), 0)").Scan(&total)
	return total
}

func (rc *ReportController) quarterStart(date time.Time) time.Time {
	quarter := (int(date.Month()) - 1) / 3
	return time.Date(date.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, date.Location())
}

func (rc *ReportController) growthPercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1)
}
