// controllers/payment.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/services"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RecordPaymentInput defines the expected JSON structure for a payment.
// The payment date defaults to today.
type RecordPaymentInput struct {
	PurchaseID  uuid.UUID       `json:"purchaseId" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate *time.Time      `json:"paymentDate"`
	Method      string          `json:"method" binding:"required"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
}

// RecordPayment posts a payment against a purchase and applies it to the
// installment schedule oldest-first.
func RecordPayment(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	payment, err := services.ApplyPayment(config.DB, dealershipID, actor, services.PaymentInput{
		PurchaseID:  input.PurchaseID,
		Amount:      input.Amount,
		PaymentDate: paymentDate,
		Method:      input.Method,
		Reference:   input.Reference,
		Notes:       input.Notes,
	})
	if err != nil {
		if services.IsValidation(err) {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Purchase not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record payment")
		}
		return
	}

	services.LogAction(c, actor, models.ActionPayment, "Payment", payment.ID.String(),
		payment.ReceiptNumber, models.JSONB{
			"amount": payment.Amount.String(),
			"method": payment.Method,
		})

	sendReceiptNotification(dealershipID, payment)

	c.JSON(http.StatusCreated, payment)
}

// sendReceiptNotification emails a receipt confirmation when the tenant has
// email notifications enabled. Best effort: failures are logged, never
// surfaced.
func sendReceiptNotification(dealershipID uuid.UUID, payment *models.Payment) {
	var settings models.SystemSettings
	if err := config.DB.Where("dealership_id = ?", dealershipID).
		First(&settings).Error; err != nil || !settings.EmailEnabled {
		return
	}

	var purchase models.Purchase
	if err := config.DB.Preload("Client").
		First(&purchase, "id = ?", payment.PurchaseID).Error; err != nil {
		return
	}
	if purchase.Client.Email == "" {
		return
	}

	mailer := services.NewMailer()
	if !mailer.Configured() {
		return
	}
	if err := mailer.SendReceipt(purchase.Client.Email, purchase.Client.FullName(),
		payment.ReceiptNumber, payment.Amount, settings.Currency, purchase.Balance); err != nil {
		logrus.WithError(err).WithField("receipt", payment.ReceiptNumber).
			Warn("failed to email receipt")
	}
}

// GetPayments lists payments, filterable by purchase, client, method and
// date range.
func GetPayments(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Purchase.Client").
		Scopes(models.ForDealership(dealershipID))

	if purchaseID := c.Query("purchase"); purchaseID != "" {
		id, err := uuid.Parse(purchaseID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid purchase filter")
			return
		}
		query = query.Where("purchase_id = ?", id)
	}
	if clientID := c.Query("client"); clientID != "" {
		id, err := uuid.Parse(clientID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client filter")
			return
		}
		query = query.Where("purchase_id IN (?)",
			config.DB.Model(&models.Purchase{}).Select("id").Where("client_id = ?", id))
	}
	if method := c.Query("method"); method != "" {
		if !models.ValidPaymentMethod(method) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid method filter")
			return
		}
		query = query.Where("method = ?", method)
	}
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
	if err := query.Order("payment_date DESC, created_at DESC").Find(&payments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}

	c.JSON(http.StatusOK, payments)
}

// GetPayment retrieves one payment
func GetPayment(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	paymentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID format")
		return
	}

	var payment models.Payment
	if err := config.DB.Preload("Purchase.Client").Preload("Purchase.Vehicle").
		Scopes(models.ForDealership(dealershipID)).
		First(&payment, "id = ?", paymentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Payment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, payment)
}

// DeletePayment reverses a payment: the purchase's remaining payments are
// replayed against a reset schedule. Admin only.
func DeletePayment(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	paymentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID format")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var payment models.Payment
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&payment, "id = ?", paymentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Payment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := services.DeletePayment(config.DB, dealershipID, paymentUUID); err != nil {
		if services.IsValidation(err) {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reverse payment")
		}
		return
	}

	services.LogAction(c, actor, models.ActionReversal, "Payment", payment.ID.String(),
		payment.ReceiptNumber, models.JSONB{"amount": payment.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"message": "Payment reversed"})
}

// GetPaymentReceiptPDF streams the receipt as a PDF document
func GetPaymentReceiptPDF(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	paymentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID format")
		return
	}

	var payment models.Payment
	if err := config.DB.Preload("Purchase.Client").Preload("Purchase.Vehicle").
		Scopes(models.ForDealership(dealershipID)).
		First(&payment, "id = ?", paymentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Payment not found")
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

	pdf, err := services.BuildReceiptPDF(&dealership, &payment)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to render receipt")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+payment.ReceiptNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
