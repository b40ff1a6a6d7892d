package controllers

import (
	"net/http"
	"strings"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// UpdateDealershipProfileInput edits the tenant's public-facing details;
// all fields optional.
type UpdateDealershipProfileInput struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
}

// GetDealershipProfile returns the caller's dealership record
func GetDealershipProfile(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var dealership models.Dealership
	if err := config.DB.First(&dealership, "id = ?", dealershipID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Dealership not found")
		return
	}

	c.JSON(http.StatusOK, dealership)
}

// UpdateDealershipProfile edits the tenant's contact details and branding.
// The code and currency are fixed after registration (currency changes go
// through settings). Admin only.
func UpdateDealershipProfile(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input UpdateDealershipProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var dealership models.Dealership
	if err := config.DB.First(&dealership, "id = ?", dealershipID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Dealership not found")
		return
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Name cannot be empty")
			return
		}
		dealership.Name = *input.Name
	}
	if input.Email != nil {
		if !utils.ValidateEmail(*input.Email) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid email")
			return
		}
		dealership.Email = *input.Email
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
			return
		}
		dealership.Phone = *input.Phone
	}
	if input.Address != nil {
		dealership.Address = *input.Address
	}
	if input.PrimaryColor != nil {
		dealership.PrimaryColor = *input.PrimaryColor
	}
	if input.SecondaryColor != nil {
		dealership.SecondaryColor = *input.SecondaryColor
	}

	if err := config.DB.Save(&dealership).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update dealership")
		return
	}

	c.JSON(http.StatusOK, dealership)
}
