// controllers/auction.go
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

type CreateAuctionInput struct {
	VehicleID    uuid.UUID       `json:"vehicleId" binding:"required"`
	StartTime    time.Time       `json:"startTime" binding:"required"`
	EndTime      time.Time       `json:"endTime" binding:"required"`
	StartingBid  decimal.Decimal `json:"startingBid" binding:"required"`
	ReservePrice decimal.Decimal `json:"reservePrice"`
	Notes        string          `json:"notes"`
}

type PlaceBidInput struct {
	BidderName  string          `json:"bidderName" binding:"required"`
	BidderPhone string          `json:"bidderPhone" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// CreateAuction schedules an auction for a repossessed vehicle
func CreateAuction(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreateAuctionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !input.EndTime.After(input.StartTime) {
		utils.RespondWithError(c, http.StatusBadRequest, "End time must be after start time")
		return
	}
	if input.StartingBid.LessThanOrEqual(decimal.Zero) {
		utils.RespondWithError(c, http.StatusBadRequest, "Starting bid must be greater than zero")
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&vehicle, "id = ?", input.VehicleID).Error; err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Vehicle not found")
		return
	}
	if vehicle.Status != models.VehicleRepossessed {
		utils.RespondWithError(c, http.StatusBadRequest, "Only repossessed vehicles can be auctioned")
		return
	}

	var auction models.Auction
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		number, err := services.NextAuctionNumber(tx, dealershipID, input.StartTime)
		if err != nil {
			return err
		}
		auction = models.Auction{
			ID:            uuid.New(),
			DealershipID:  dealershipID,
			VehicleID:     vehicle.ID,
			AuctionNumber: number,
			StartTime:     input.StartTime,
			EndTime:       input.EndTime,
			StartingBid:   input.StartingBid,
			ReservePrice:  input.ReservePrice,
			Status:        models.AuctionScheduled,
			Notes:         input.Notes,
		}
		return tx.Create(&auction).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create auction")
		return
	}

	auction.Vehicle = vehicle
	c.JSON(http.StatusCreated, auction)
}

// GetAuctions lists auctions, filterable by status
func GetAuctions(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Vehicle").Preload("Bids").
		Scopes(models.ForDealership(dealershipID))

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var auctions []models.Auction
	if err := query.Order("start_time DESC").Find(&auctions).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve auctions")
		return
	}

	c.JSON(http.StatusOK, auctions)
}

// GetAuction retrieves one auction with its bids
func GetAuction(c *gin.Context) {
	auction, ok := loadAuction(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, auction)
}

// StartAuction opens a scheduled auction for bidding
func StartAuction(c *gin.Context) {
	auction, ok := loadAuction(c)
	if !ok {
		return
	}
	if auction.Status != models.AuctionScheduled {
		utils.RespondWithError(c, http.StatusBadRequest, "Only scheduled auctions can be started")
		return
	}

	if err := config.DB.Model(auction).Update("status", models.AuctionActive).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to start auction")
		return
	}

	auction.Status = models.AuctionActive
	c.JSON(http.StatusOK, auction)
}

// PlaceBid records a bid against an active auction
func PlaceBid(c *gin.Context) {
	auction, ok := loadAuction(c)
	if !ok {
		return
	}

	var input PlaceBidInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !utils.ValidatePhone(input.BidderPhone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid bidder phone number")
		return
	}

	if err := services.ValidateBid(auction, input.Amount, time.Now()); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	bid := models.Bid{
		ID:          uuid.New(),
		AuctionID:   auction.ID,
		BidderName:  input.BidderName,
		BidderPhone: input.BidderPhone,
		Amount:      input.Amount,
	}
	if err := config.DB.Create(&bid).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to place bid")
		return
	}

	c.JSON(http.StatusCreated, bid)
}

// FinalizeAuction closes an active auction: the highest bid at or above
// the reserve wins, the vehicle is marked auctioned with a history row;
// no qualifying bid cancels the auction.
func FinalizeAuction(c *gin.Context) {
	auction, ok := loadAuction(c)
	if !ok {
		return
	}
	if auction.Status != models.AuctionActive {
		utils.RespondWithError(c, http.StatusBadRequest, "Only active auctions can be finalized")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	winner, outcome := services.FinalizeOutcome(auction)

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": outcome}
		if winner != nil {
			updates["winning_bid_id"] = winner.ID
			if err := tx.Model(&models.Bid{}).
				Where("id = ?", winner.ID).Update("is_winning", true).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(auction).Updates(updates).Error; err != nil {
			return err
		}

		if winner == nil {
			return nil
		}

		oldStatus := auction.Vehicle.Status
		if err := tx.Model(&models.Vehicle{}).
			Where("id = ?", auction.VehicleID).
			Update("status", models.VehicleAuctioned).Error; err != nil {
			return err
		}
		history := models.VehicleHistory{
			ID:            uuid.New(),
			DealershipID:  auction.DealershipID,
			VehicleID:     auction.VehicleID,
			OldStatus:     oldStatus,
			NewStatus:     models.VehicleAuctioned,
			ChangedByID:   actor.ID,
			ChangedByName: actor.Name,
			Notes:         "Sold at auction " + auction.AuctionNumber,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to finalize auction")
		return
	}

	services.LogAction(c, actor, models.ActionStatusChange, "Auction",
		auction.ID.String(), auction.AuctionNumber, models.JSONB{"to": outcome})

	auction.Status = outcome
	if winner != nil {
		auction.WinningBidID = &winner.ID
	}
	c.JSON(http.StatusOK, auction)
}

// CancelAuction calls off a scheduled or active auction
func CancelAuction(c *gin.Context) {
	auction, ok := loadAuction(c)
	if !ok {
		return
	}
	if auction.Status == models.AuctionCompleted || auction.Status == models.AuctionCancelled {
		utils.RespondWithError(c, http.StatusBadRequest, "Auction is already closed")
		return
	}

	if err := config.DB.Model(auction).Update("status", models.AuctionCancelled).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel auction")
		return
	}

	auction.Status = models.AuctionCancelled
	c.JSON(http.StatusOK, auction)
}

func loadAuction(c *gin.Context) (*models.Auction, bool) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return nil, false
	}

	auctionUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid auction ID format")
		return nil, false
	}

	var auction models.Auction
	if err := config.DB.Preload("Vehicle").Preload("Bids").
		Scopes(models.ForDealership(dealershipID)).
		First(&auction, "id = ?", auctionUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Auction not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &auction, true
}
