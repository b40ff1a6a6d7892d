// controllers/settings.go
package controllers

import (
	"net/http"
	"strings"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/services"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// UpdateSettingsInput changes the tenant's financial defaults; all fields
// optional.
type UpdateSettingsInput struct {
	DefaultInterestRate *decimal.Decimal `json:"defaultInterestRate"`
	LatePaymentPenalty  *decimal.Decimal `json:"latePaymentPenalty"`
	PaymentReminderDays *int             `json:"paymentReminderDays"`
	Currency            *string          `json:"currency"`
	SMSEnabled          *bool            `json:"smsEnabled"`
	EmailEnabled        *bool            `json:"emailEnabled"`
}

// GetSettings returns the dealership's settings row
func GetSettings(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var settings models.SystemSettings
	if err := config.DB.Where("dealership_id = ?", dealershipID).
		First(&settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings changes the financial defaults. Admin only.
func UpdateSettings(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var settings models.SystemSettings
	if err := config.DB.Where("dealership_id = ?", dealershipID).
		First(&settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	changes := models.JSONB{}

	if input.DefaultInterestRate != nil {
		rate := *input.DefaultInterestRate
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			utils.RespondWithError(c, http.StatusBadRequest, "Interest rate must be between 0 and 100")
			return
		}
		settings.DefaultInterestRate = rate
		changes["defaultInterestRate"] = rate.String()
	}
	if input.LatePaymentPenalty != nil {
		penalty := *input.LatePaymentPenalty
		if penalty.IsNegative() || penalty.GreaterThan(decimal.NewFromInt(100)) {
			utils.RespondWithError(c, http.StatusBadRequest, "Penalty must be between 0 and 100")
			return
		}
		settings.LatePaymentPenalty = penalty
		changes["latePaymentPenalty"] = penalty.String()
	}
	if input.PaymentReminderDays != nil {
		days := *input.PaymentReminderDays
		if days < 1 || days > 30 {
			utils.RespondWithError(c, http.StatusBadRequest, "Reminder days must be between 1 and 30")
			return
		}
		settings.PaymentReminderDays = days
		changes["paymentReminderDays"] = days
	}
	if input.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*input.Currency))
		if len(currency) != 3 {
			utils.RespondWithError(c, http.StatusBadRequest, "Currency must be a 3-letter code")
			return
		}
		settings.Currency = currency
		changes["currency"] = currency
	}
	if input.SMSEnabled != nil {
		settings.SMSEnabled = *input.SMSEnabled
		changes["smsEnabled"] = *input.SMSEnabled
	}
	if input.EmailEnabled != nil {
		settings.EmailEnabled = *input.EmailEnabled
		changes["emailEnabled"] = *input.EmailEnabled
	}

	if err := config.DB.Save(&settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	services.LogAction(c, actor, models.ActionUpdate, "SystemSettings",
		settings.ID.String(), "", changes)

	c.JSON(http.StatusOK, settings)
}
