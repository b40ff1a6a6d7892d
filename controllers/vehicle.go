// controllers/vehicle.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
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

// CreateVehicleInput defines the expected JSON structure for creating a vehicle
type CreateVehicleInput struct {
	Make               string          `json:"make" binding:"required"`
	Model              string          `json:"model" binding:"required"`
	Year               int             `json:"year" binding:"required"`
	VIN                string          `json:"vin" binding:"required"`
	RegistrationNumber string          `json:"registrationNumber"`
	Color              string          `json:"color"`
	Mileage            int             `json:"mileage"`
	FuelType           string          `json:"fuelType"`
	Transmission       string          `json:"transmission"`
	PurchasePrice      decimal.Decimal `json:"purchasePrice" binding:"required"`
	SellingPrice       decimal.Decimal `json:"sellingPrice" binding:"required"`
	MinimumPrice       decimal.Decimal `json:"minimumPrice"`
	IsFeatured         bool            `json:"isFeatured"`
	Description        string          `json:"description"`
}

// UpdateVehicleInput allows partial updates
type UpdateVehicleInput struct {
	Make               *string          `json:"make"`
	Model              *string          `json:"model"`
	Year               *int             `json:"year"`
	RegistrationNumber *string          `json:"registrationNumber"`
	Color              *string          `json:"color"`
	Mileage            *int             `json:"mileage"`
	FuelType           *string          `json:"fuelType"`
	Transmission       *string          `json:"transmission"`
	PurchasePrice      *decimal.Decimal `json:"purchasePrice"`
	SellingPrice       *decimal.Decimal `json:"sellingPrice"`
	MinimumPrice       *decimal.Decimal `json:"minimumPrice"`
	IsFeatured         *bool            `json:"isFeatured"`
	Description        *string          `json:"description"`
}

// ChangeStatusInput carries a status transition
type ChangeStatusInput struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// CreateVehicle adds a vehicle to the registry
func CreateVehicle(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreateVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	vin := strings.ToUpper(strings.TrimSpace(input.VIN))
	if !utils.ValidateVIN(vin) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid VIN")
		return
	}
	if input.Year < 1950 || input.Year > time.Now().Year()+1 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid year")
		return
	}
	if input.PurchasePrice.LessThanOrEqual(decimal.Zero) || input.SellingPrice.LessThanOrEqual(decimal.Zero) {
		utils.RespondWithError(c, http.StatusBadRequest, "Prices must be greater than zero")
		return
	}

	var existing models.Vehicle
	result := config.DB.Scopes(models.ForDealership(dealershipID)).
		Where("vin = ?", vin).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "A vehicle with this VIN already exists")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	vehicle := models.Vehicle{
		ID:                 uuid.New(),
		DealershipID:       dealershipID,
		Make:               input.Make,
		Model:              input.Model,
		Year:               input.Year,
		VIN:                vin,
		RegistrationNumber: input.RegistrationNumber,
		Color:              input.Color,
		Mileage:            input.Mileage,
		FuelType:           input.FuelType,
		Transmission:       input.Transmission,
		PurchasePrice:      input.PurchasePrice,
		SellingPrice:       input.SellingPrice,
		MinimumPrice:       input.MinimumPrice,
		Status:             models.VehicleAvailable,
		IsFeatured:         input.IsFeatured,
		Description:        input.Description,
	}

	if err := config.DB.Create(&vehicle).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create vehicle")
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// GetVehicles lists vehicles with optional filters
func GetVehicles(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Scopes(models.ForDealership(dealershipID))

	if status := c.Query("status"); status != "" {
		if !models.ValidVehicleStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}
	if makeFilter := c.Query("make"); makeFilter != "" {
		query = query.Where("make ILIKE ?", makeFilter)
	}
	if featured := c.Query("featured"); featured != "" {
		query = query.Where("is_featured = ?", featured == "true")
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"make ILIKE ? OR model ILIKE ? OR vin ILIKE ? OR registration_number ILIKE ?",
			like, like, like, like)
	}

	var vehicles []models.Vehicle
	if err := query.Order("created_at DESC").Find(&vehicles).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve vehicles")
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

// GetVehicle retrieves one vehicle
func GetVehicle(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	vehicleUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle ID format")
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&vehicle, "id = ?", vehicleUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Vehicle not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// UpdateVehicle applies a partial update. Status changes go through
// ChangeVehicleStatus so every transition lands in the history.
func UpdateVehicle(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	vehicleUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle ID format")
		return
	}

	var input UpdateVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&vehicle, "id = ?", vehicleUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Vehicle not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Make != nil {
		vehicle.Make = *input.Make
	}
	if input.Model != nil {
		vehicle.Model = *input.Model
	}
	if input.Year != nil {
		if *input.Year < 1950 || *input.Year > time.Now().Year()+1 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid year")
			return
		}
		vehicle.Year = *input.Year
	}
	if input.RegistrationNumber != nil {
		vehicle.RegistrationNumber = *input.RegistrationNumber
	}
	if input.Color != nil {
		vehicle.Color = *input.Color
	}
	if input.Mileage != nil {
		vehicle.Mileage = *input.Mileage
	}
	if input.FuelType != nil {
		vehicle.FuelType = *input.FuelType
	}
	if input.Transmission != nil {
		vehicle.Transmission = *input.Transmission
	}
	if input.PurchasePrice != nil {
		vehicle.PurchasePrice = *input.PurchasePrice
	}
	if input.SellingPrice != nil {
		vehicle.SellingPrice = *input.SellingPrice
	}
	if input.MinimumPrice != nil {
		vehicle.MinimumPrice = *input.MinimumPrice
	}
	if input.IsFeatured != nil {
		vehicle.IsFeatured = *input.IsFeatured
	}
	if input.Description != nil {
		vehicle.Description = *input.Description
	}

	if err := config.DB.Save(&vehicle).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update vehicle")
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// ChangeVehicleStatus transitions a vehicle and records the change
func ChangeVehicleStatus(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	vehicleUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle ID format")
		return
	}

	var input ChangeStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !models.ValidVehicleStatus(input.Status) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle status")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&vehicle, "id = ?", vehicleUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Vehicle not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if vehicle.Status == input.Status {
		c.JSON(http.StatusOK, vehicle)
		return
	}

	oldStatus := vehicle.Status
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&vehicle).Update("status", input.Status).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update status")
		return
	}

	history := models.VehicleHistory{
		ID:            uuid.New(),
		DealershipID:  dealershipID,
		VehicleID:     vehicle.ID,
		OldStatus:     oldStatus,
		NewStatus:     input.Status,
		ChangedByID:   actor.ID,
		ChangedByName: actor.Name,
		Notes:         input.Notes,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record status change")
		return
	}

	tx.Commit()

	vehicle.Status = input.Status
	services.LogAction(c, actor, models.ActionStatusChange, "Vehicle", vehicle.ID.String(),
		vehicle.Make+" "+vehicle.Model, models.JSONB{"from": oldStatus, "to": input.Status})

	c.JSON(http.StatusOK, vehicle)
}

// GetVehicleHistory lists a vehicle's status transitions
func GetVehicleHistory(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	vehicleUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle ID format")
		return
	}

	var history []models.VehicleHistory
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		Where("vehicle_id = ?", vehicleUUID).
		Order("created_at DESC").Find(&history).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	c.JSON(http.StatusOK, history)
}

// DeleteVehicle removes a vehicle that was never sold
func DeleteVehicle(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	vehicleUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle ID format")
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&vehicle, "id = ?", vehicleUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Vehicle not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var purchases int64
	if err := config.DB.Model(&models.Purchase{}).
		Where("vehicle_id = ?", vehicle.ID).Count(&purchases).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if purchases > 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot delete a vehicle with purchase history")
		return
	}

	if err := config.DB.Delete(&vehicle).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete vehicle")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted successfully"})
}
