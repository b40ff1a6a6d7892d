// controllers/client.go
package controllers

import (
	"errors"
	"net/http"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateClientInput defines the expected JSON structure for creating a client
type CreateClientInput struct {
	FirstName   string          `json:"firstName" binding:"required"`
	LastName    string          `json:"lastName" binding:"required"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone" binding:"required"`
	NationalID  string          `json:"nationalId" binding:"required"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	Occupation  string          `json:"occupation"`
	Employer    string          `json:"employer"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Notes       string          `json:"notes"`
}

// UpdateClientInput allows partial updates
type UpdateClientInput struct {
	FirstName       *string          `json:"firstName"`
	LastName        *string          `json:"lastName"`
	Email           *string          `json:"email"`
	Phone           *string          `json:"phone"`
	Address         *string          `json:"address"`
	City            *string          `json:"city"`
	Occupation      *string          `json:"occupation"`
	Employer        *string          `json:"employer"`
	CreditLimit     *decimal.Decimal `json:"creditLimit"`
	Status          *string          `json:"status"`
	IsBlacklisted   *bool            `json:"isBlacklisted"`
	BlacklistReason *string          `json:"blacklistReason"`
	Notes           *string          `json:"notes"`
}

// CreateClient registers a new client for the dealership
func CreateClient(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
		return
	}
	if input.Email != "" && !utils.ValidateEmail(input.Email) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid email address")
		return
	}
	if input.CreditLimit.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Credit limit cannot be negative")
		return
	}

	var existing models.Client
	result := config.DB.Scopes(models.ForDealership(dealershipID)).
		Where("national_id = ?", input.NationalID).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "A client with this national ID already exists")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	client := models.Client{
		ID:           uuid.New(),
		DealershipID: dealershipID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		NationalID:   input.NationalID,
		Address:      input.Address,
		City:         input.City,
		Occupation:   input.Occupation,
		Employer:     input.Employer,
		CreditLimit:  input.CreditLimit,
		Status:       models.ClientActive,
		Notes:        input.Notes,
	}

	if err := config.DB.Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClients lists the dealership's clients with optional filters
func GetClients(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Scopes(models.ForDealership(dealershipID))

	if status := c.Query("status"); status != "" {
		if !models.ValidClientStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}
	if blacklisted := c.Query("blacklisted"); blacklisted != "" {
		query = query.Where("is_blacklisted = ?", blacklisted == "true")
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR phone ILIKE ? OR national_id ILIKE ?",
			like, like, like, like)
	}

	var clients []models.Client
	if err := query.Order("created_at DESC").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}

	c.JSON(http.StatusOK, clients)
}

// GetClient retrieves one client with their purchases
func GetClient(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	clientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var client models.Client
	if err := config.DB.Preload("Purchases.Vehicle").Preload("Purchases.Plan").
		Scopes(models.ForDealership(dealershipID)).
		First(&client, "id = ?", clientUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, client)
}

// UpdateClient applies a partial update
func UpdateClient(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	clientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var client models.Client
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&client, "id = ?", clientUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
			return
		}
		client.Phone = *input.Phone
	}
	if input.Email != nil {
		if *input.Email != "" && !utils.ValidateEmail(*input.Email) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid email address")
			return
		}
		client.Email = *input.Email
	}
	if input.Status != nil {
		if !models.ValidClientStatus(*input.Status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client status")
			return
		}
		client.Status = *input.Status
	}
	if input.CreditLimit != nil {
		if input.CreditLimit.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Credit limit cannot be negative")
			return
		}
		client.CreditLimit = *input.CreditLimit
	}
	if input.FirstName != nil {
		client.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		client.LastName = *input.LastName
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.City != nil {
		client.City = *input.City
	}
	if input.Occupation != nil {
		client.Occupation = *input.Occupation
	}
	if input.Employer != nil {
		client.Employer = *input.Employer
	}
	if input.IsBlacklisted != nil {
		client.IsBlacklisted = *input.IsBlacklisted
		if !client.IsBlacklisted {
			client.BlacklistReason = ""
		}
	}
	if input.BlacklistReason != nil {
		client.BlacklistReason = *input.BlacklistReason
	}
	if input.Notes != nil {
		client.Notes = *input.Notes
	}

	if err := config.DB.Save(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client")
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient removes a client without purchase history
func DeleteClient(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	clientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var client models.Client
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&client, "id = ?", clientUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var purchases int64
	if err := config.DB.Model(&models.Purchase{}).
		Where("client_id = ?", client.ID).Count(&purchases).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if purchases > 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot delete a client with purchase history")
		return
	}

	if err := config.DB.Delete(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
