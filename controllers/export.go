// controllers/export.go
package controllers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/services"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func csvWriter(c *gin.Context, filename string) *csv.Writer {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	return csv.NewWriter(c.Writer)
}

// ExportPaymentsCSV streams the payment ledger, filterable by date range
func ExportPaymentsCSV(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Purchase.Client").
		Scopes(models.ForDealership(dealershipID))
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("payment_date >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("payment_date < ?", t.AddDate(0, 0, 1))
	}

	var payments []models.Payment
	if err := query.Order("payment_date").Find(&payments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}

	w := csvWriter(c, "payments.csv")
	defer w.Flush()

	w.Write([]string{"receipt_number", "payment_date", "client", "amount", "method", "reference", "received_by"})
	for i := range payments {
		p := &payments[i]
		w.Write([]string{
			p.ReceiptNumber,
			p.PaymentDate.Format("2006-01-02"),
			p.Purchase.Client.FullName(),
			p.Amount.StringFixed(2),
			p.Method,
			p.Reference,
			p.ReceivedByName,
		})
	}
}

// ExportSchedulesCSV streams schedule rows, optionally for one plan
func ExportSchedulesCSV(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Scopes(models.ForDealership(dealershipID))
	if planID := c.Query("plan"); planID != "" {
		id, err := uuid.Parse(planID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan filter")
			return
		}
		query = query.Where("plan_id = ?", id)
	}

	var rows []models.PaymentSchedule
	if err := query.Order("plan_id, installment_number").Find(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve schedule")
		return
	}

	today := time.Now()
	w := csvWriter(c, "schedules.csv")
	defer w.Flush()

	w.Write([]string{"plan_id", "installment", "due_date", "amount_due", "amount_paid", "is_paid", "days_overdue"})
	for i := range rows {
		row := &rows[i]
		paid := "no"
		if row.IsPaid {
			paid = "yes"
		}
		w.Write([]string{
			row.PlanID.String(),
			strconv.Itoa(row.InstallmentNumber),
			row.DueDate.Format("2006-01-02"),
			row.AmountDue.StringFixed(2),
			row.AmountPaid.StringFixed(2),
			paid,
			strconv.Itoa(row.DaysOverdue(today)),
		})
	}
}

// ExportClientsCSV streams the client register
func ExportClientsCSV(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var clients []models.Client
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		Order("last_name, first_name").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}

	w := csvWriter(c, "clients.csv")
	defer w.Flush()

	w.Write([]string{"name", "national_id", "phone", "email", "city", "status", "blacklisted"})
	for i := range clients {
		cl := &clients[i]
		blacklisted := "no"
		if cl.IsBlacklisted {
			blacklisted = "yes"
		}
		w.Write([]string{
			cl.FullName(), cl.NationalID, cl.Phone, cl.Email, cl.City, cl.Status, blacklisted,
		})
	}
}

// ExportExpensesCSV streams expenses, filterable by status
func ExportExpensesCSV(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Category").
		Scopes(models.ForDealership(dealershipID))
	if status := c.Query("status"); status != "" {
		if !models.ValidExpenseStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}

	var expenses []models.Expense
	if err := query.Order("expense_date").Find(&expenses).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve expenses")
		return
	}

	w := csvWriter(c, "expenses.csv")
	defer w.Flush()

	w.Write([]string{"date", "category", "vendor", "description", "amount", "status", "receipt_number"})
	for i := range expenses {
		e := &expenses[i]
		w.Write([]string{
			e.ExpenseDate.Format("2006-01-02"),
			e.Category.Name,
			e.Vendor,
			e.Description,
			e.Amount.StringFixed(2),
			e.Status,
			e.ReceiptNumber,
		})
	}
}

// ExportPayslipsCSV streams a month's payroll
func ExportPayslipsCSV(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Employee").
		Scopes(models.ForDealership(dealershipID))
	if monthStr := c.Query("month"); monthStr != "" {
		month, err := time.Parse("2006-01", monthStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid month, expected YYYY-MM")
			return
		}
		query = query.Where("month = ?", utils.BeginningOfMonth(month))
	}

	var payslips []models.Payslip
	if err := query.Order("month DESC").Find(&payslips).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payslips")
		return
	}

	w := csvWriter(c, "payslips.csv")
	defer w.Flush()

	w.Write([]string{"month", "employee", "basic", "allowances", "deductions", "gross", "net", "status"})
	for i := range payslips {
		p := &payslips[i]
		w.Write([]string{
			p.Month.Format("2006-01"),
			p.Employee.FullName(),
			p.BasicSalary.StringFixed(2),
			p.Allowances.StringFixed(2),
			p.Deductions.StringFixed(2),
			p.GrossPay.StringFixed(2),
			p.NetPay.StringFixed(2),
			p.Status,
		})
	}
}

// GetPlanAgreementPDF streams the financing agreement for a plan
func GetPlanAgreementPDF(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	planUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var plan models.InstallmentPlan
	if err := config.DB.Preload("Schedule", func(db *gorm.DB) *gorm.DB {
		return db.Order("payment_schedules.installment_number")
	}).Preload("Purchase.Client").Preload("Purchase.Vehicle").
		Scopes(models.ForDealership(dealershipID)).
		First(&plan, "id = ?", planUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var dealership models.Dealership
	if err := config.DB.First(&dealership, "id = ?", dealershipID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	pdf, err := services.BuildAgreementPDF(&dealership, &plan)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to render agreement")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="agreement-`+plan.ID.String()+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
