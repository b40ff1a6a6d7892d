// controllers/insurance.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreatePolicyInput struct {
	VehicleID    uuid.UUID       `json:"vehicleId" binding:"required"`
	Provider     string          `json:"provider" binding:"required"`
	PolicyNumber string          `json:"policyNumber" binding:"required"`
	PolicyType   string          `json:"policyType" binding:"required"`
	StartDate    time.Time       `json:"startDate" binding:"required"`
	EndDate      time.Time       `json:"endDate" binding:"required"`
	Premium      decimal.Decimal `json:"premium" binding:"required"`
	Notes        string          `json:"notes"`
}

type UpdatePolicyInput struct {
	Provider   *string          `json:"provider"`
	PolicyType *string          `json:"policyType"`
	StartDate  *time.Time       `json:"startDate"`
	EndDate    *time.Time       `json:"endDate"`
	Premium    *decimal.Decimal `json:"premium"`
	Status     *string          `json:"status"`
	Notes      *string          `json:"notes"`
}

// CreateInsurancePolicy records a policy for a vehicle
func CreateInsurancePolicy(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreatePolicyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !models.ValidPolicyType(input.PolicyType) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid policy type")
		return
	}
	if !input.EndDate.After(input.StartDate) {
		utils.RespondWithError(c, http.StatusBadRequest, "End date must be after start date")
		return
	}
	if input.Premium.LessThanOrEqual(decimal.Zero) {
		utils.RespondWithError(c, http.StatusBadRequest, "Premium must be greater than zero")
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&vehicle, "id = ?", input.VehicleID).Error; err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Vehicle not found")
		return
	}

	var existing models.InsurancePolicy
	result := config.DB.Scopes(models.ForDealership(dealershipID)).
		Where("policy_number = ?", input.PolicyNumber).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Policy number already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	policy := models.InsurancePolicy{
		ID:           uuid.New(),
		DealershipID: dealershipID,
		VehicleID:    vehicle.ID,
		Provider:     input.Provider,
		PolicyNumber: input.PolicyNumber,
		PolicyType:   input.PolicyType,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Premium:      input.Premium,
		Status:       models.PolicyActive,
		Notes:        input.Notes,
	}
	if err := config.DB.Create(&policy).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create policy")
		return
	}

	policy.Vehicle = vehicle
	c.JSON(http.StatusCreated, policy)
}

// GetInsurancePolicies lists policies, filterable by status and vehicle
func GetInsurancePolicies(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Vehicle").
		Scopes(models.ForDealership(dealershipID))

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if vehicleID := c.Query("vehicle"); vehicleID != "" {
		id, err := uuid.Parse(vehicleID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle filter")
			return
		}
		query = query.Where("vehicle_id = ?", id)
	}

	var policies []models.InsurancePolicy
	if err := query.Order("end_date").Find(&policies).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve policies")
		return
	}

	c.JSON(http.StatusOK, policies)
}

// GetExpiringPolicies lists active policies running out within `days`
// (default 14).
func GetExpiringPolicies(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	days := 14
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid days parameter")
			return
		}
		days = n
	}

	today := utils.BeginningOfDay(time.Now())

	var policies []models.InsurancePolicy
	if err := config.DB.Preload("Vehicle").
		Scopes(models.ForDealership(dealershipID)).
		Where("status = ? AND end_date >= ? AND end_date < ?",
			models.PolicyActive, today, today.AddDate(0, 0, days)).
		Order("end_date").Find(&policies).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve policies")
		return
	}

	type expiringView struct {
		models.InsurancePolicy
		DaysToExpiry int `json:"daysToExpiry"`
	}
	views := make([]expiringView, 0, len(policies))
	for i := range policies {
		views = append(views, expiringView{
			InsurancePolicy: policies[i],
			DaysToExpiry:    policies[i].DaysToExpiry(today),
		})
	}

	c.JSON(http.StatusOK, views)
}

// UpdateInsurancePolicy edits a policy
func UpdateInsurancePolicy(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	policyUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid policy ID format")
		return
	}

	var input UpdatePolicyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var policy models.InsurancePolicy
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&policy, "id = ?", policyUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Policy not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Provider != nil {
		policy.Provider = *input.Provider
	}
	if input.PolicyType != nil {
		if !models.ValidPolicyType(*input.PolicyType) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid policy type")
			return
		}
		policy.PolicyType = *input.PolicyType
	}
	if input.StartDate != nil {
		policy.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		policy.EndDate = *input.EndDate
	}
	if !policy.EndDate.After(policy.StartDate) {
		utils.RespondWithError(c, http.StatusBadRequest, "End date must be after start date")
		return
	}
	if input.Premium != nil {
		if input.Premium.LessThanOrEqual(decimal.Zero) {
			utils.RespondWithError(c, http.StatusBadRequest, "Premium must be greater than zero")
			return
		}
		policy.Premium = *input.Premium
	}
	if input.Status != nil {
		switch *input.Status {
		case models.PolicyActive, models.PolicyExpired, models.PolicyCancelled:
			policy.Status = *input.Status
		default:
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid policy status")
			return
		}
	}
	if input.Notes != nil {
		policy.Notes = *input.Notes
	}

	if err := config.DB.Save(&policy).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update policy")
		return
	}

	c.JSON(http.StatusOK, policy)
}

// DeleteInsurancePolicy removes a policy record
func DeleteInsurancePolicy(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	policyUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid policy ID format")
		return
	}

	var policy models.InsurancePolicy
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&policy, "id = ?", policyUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Policy not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Delete(&policy).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete policy")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Policy deleted successfully"})
}
