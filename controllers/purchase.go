// controllers/purchase.go
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
	"gorm.io/gorm"
)

// CreatePurchaseInput defines the expected JSON structure for recording a sale
type CreatePurchaseInput struct {
	ClientID      uuid.UUID        `json:"clientId" binding:"required"`
	VehicleID     uuid.UUID        `json:"vehicleId" binding:"required"`
	PurchaseDate  *time.Time       `json:"purchaseDate"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"` // defaults to the vehicle's selling price
	DepositPaid   decimal.Decimal  `json:"depositPaid"`
	Notes         string           `json:"notes"`
}

// UpdatePurchaseInput allows limited updates before payments exist
type UpdatePurchaseInput struct {
	PurchaseDate  *time.Time       `json:"purchaseDate"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	DepositPaid   *decimal.Decimal `json:"depositPaid"`
	Notes         *string          `json:"notes"`
}

// CreatePurchase records a financed sale: the purchase row is created and
// the vehicle moves to sold in one transaction.
func CreatePurchase(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreatePurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var client models.Client
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&client, "id = ?", input.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if client.IsBlacklisted {
		utils.RespondWithError(c, http.StatusBadRequest, "Client is blacklisted")
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&vehicle, "id = ?", input.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Vehicle not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if vehicle.Status != models.VehicleAvailable && vehicle.Status != models.VehicleReserved {
		utils.RespondWithError(c, http.StatusBadRequest, "Vehicle is not available for sale")
		return
	}

	price := vehicle.SellingPrice
	if input.PurchasePrice != nil {
		price = *input.PurchasePrice
	}
	if price.LessThanOrEqual(decimal.Zero) {
		utils.RespondWithError(c, http.StatusBadRequest, "Purchase price must be greater than zero")
		return
	}
	if input.DepositPaid.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Deposit cannot be negative")
		return
	}
	if input.DepositPaid.GreaterThanOrEqual(price) {
		utils.RespondWithError(c, http.StatusBadRequest, "Deposit must be less than the purchase price")
		return
	}

	purchaseDate := time.Now()
	if input.PurchaseDate != nil {
		purchaseDate = *input.PurchaseDate
	}

	purchase := models.Purchase{
		ID:            uuid.New(),
		DealershipID:  dealershipID,
		ClientID:      client.ID,
		VehicleID:     vehicle.ID,
		PurchaseDate:  purchaseDate,
		PurchasePrice: price,
		DepositPaid:   input.DepositPaid,
		TotalPaid:     decimal.Zero,
		Balance:       price.Sub(input.DepositPaid),
		Notes:         input.Notes,
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&purchase).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create purchase")
		return
	}

	oldStatus := vehicle.Status
	if err := tx.Model(&vehicle).Update("status", models.VehicleSold).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update vehicle status")
		return
	}
	history := models.VehicleHistory{
		ID:            uuid.New(),
		DealershipID:  dealershipID,
		VehicleID:     vehicle.ID,
		OldStatus:     oldStatus,
		NewStatus:     models.VehicleSold,
		ChangedByID:   actor.ID,
		ChangedByName: actor.Name,
		Notes:         "Sold to " + client.FullName(),
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record status change")
		return
	}

	tx.Commit()

	services.LogAction(c, actor, models.ActionCreate, "Purchase", purchase.ID.String(),
		client.FullName()+" / "+vehicle.Make+" "+vehicle.Model, nil)

	c.JSON(http.StatusCreated, purchase)
}

// GetPurchases lists purchases with optional filters
func GetPurchases(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Client").Preload("Vehicle").
		Scopes(models.ForDealership(dealershipID))

	if clientID := c.Query("clientId"); clientID != "" {
		clientUUID, err := uuid.Parse(clientID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		query = query.Where("client_id = ?", clientUUID)
	}
	if paidOff := c.Query("paidOff"); paidOff != "" {
		query = query.Where("is_paid_off = ?", paidOff == "true")
	}

	var purchases []models.Purchase
	if err := query.Order("purchase_date DESC").Find(&purchases).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve purchases")
		return
	}

	c.JSON(http.StatusOK, purchases)
}

// GetPurchase retrieves one purchase with its plan and payments
func GetPurchase(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	purchaseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid purchase ID format")
		return
	}

	var purchase models.Purchase
	if err := config.DB.
		Preload("Client").Preload("Vehicle").
		Preload("Plan.Schedule", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_schedules.installment_number")
		}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payments.payment_date DESC")
		}).
		Scopes(models.ForDealership(dealershipID)).
		First(&purchase, "id = ?", purchaseUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Purchase not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// UpdatePurchase adjusts terms while no payments or plan exist; notes can
// always change.
func UpdatePurchase(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	purchaseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid purchase ID format")
		return
	}

	var input UpdatePurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var purchase models.Purchase
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&purchase, "id = ?", purchaseUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Purchase not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	termsChange := input.PurchasePrice != nil || input.DepositPaid != nil || input.PurchaseDate != nil
	if termsChange {
		var payments int64
		if err := config.DB.Model(&models.Payment{}).
			Where("purchase_id = ?", purchase.ID).Count(&payments).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		var plans int64
		if err := config.DB.Model(&models.InstallmentPlan{}).
			Where("purchase_id = ?", purchase.ID).Count(&plans).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		if payments > 0 || plans > 0 {
			utils.RespondWithError(c, http.StatusBadRequest,
				"Cannot change terms once a plan or payments exist")
			return
		}
	}

	if input.PurchaseDate != nil {
		purchase.PurchaseDate = *input.PurchaseDate
	}
	if input.PurchasePrice != nil {
		if input.PurchasePrice.LessThanOrEqual(decimal.Zero) {
			utils.RespondWithError(c, http.StatusBadRequest, "Purchase price must be greater than zero")
			return
		}
		purchase.PurchasePrice = *input.PurchasePrice
	}
	if input.DepositPaid != nil {
		if input.DepositPaid.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Deposit cannot be negative")
			return
		}
		purchase.DepositPaid = *input.DepositPaid
	}
	if purchase.DepositPaid.GreaterThanOrEqual(purchase.PurchasePrice) {
		utils.RespondWithError(c, http.StatusBadRequest, "Deposit must be less than the purchase price")
		return
	}
	if termsChange {
		purchase.Balance = purchase.PurchasePrice.Sub(purchase.DepositPaid)
	}
	if input.Notes != nil {
		purchase.Notes = *input.Notes
	}

	if err := config.DB.Save(&purchase).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update purchase")
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// DeletePurchase removes a purchase that has no payments, returning the
// vehicle to the lot.
func DeletePurchase(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	purchaseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid purchase ID format")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var purchase models.Purchase
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&purchase, "id = ?", purchaseUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Purchase not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var payments int64
	if err := config.DB.Model(&models.Payment{}).
		Where("purchase_id = ?", purchase.ID).Count(&payments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if payments > 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot delete a purchase with recorded payments")
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var plan models.InstallmentPlan
	planErr := tx.Where("purchase_id = ?", purchase.ID).First(&plan).Error
	if planErr == nil {
		if err := tx.Where("plan_id = ?", plan.ID).Delete(&models.PaymentSchedule{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete schedule")
			return
		}
		if err := tx.Unscoped().Delete(&plan).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete plan")
			return
		}
	} else if !errors.Is(planErr, gorm.ErrRecordNotFound) {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Delete(&purchase).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete purchase")
		return
	}

	var vehicle models.Vehicle
	if err := tx.First(&vehicle, "id = ?", purchase.VehicleID).Error; err == nil {
		oldStatus := vehicle.Status
		if err := tx.Model(&vehicle).Update("status", models.VehicleAvailable).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update vehicle status")
			return
		}
		history := models.VehicleHistory{
			ID:            uuid.New(),
			DealershipID:  dealershipID,
			VehicleID:     vehicle.ID,
			OldStatus:     oldStatus,
			NewStatus:     models.VehicleAvailable,
			ChangedByID:   actor.ID,
			ChangedByName: actor.Name,
			Notes:         "Purchase cancelled",
		}
		if err := tx.Create(&history).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record status change")
			return
		}
	}

	tx.Commit()

	services.LogAction(c, actor, models.ActionDelete, "Purchase", purchase.ID.String(), "", nil)

	c.JSON(http.StatusOK, gin.H{"message": "Purchase deleted successfully"})
}
