// controllers/repossession.go
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

type CreateRepossessionInput struct {
	PurchaseID     uuid.UUID  `json:"purchaseId" binding:"required"`
	Reason         string     `json:"reason" binding:"required"`
	PaymentsMissed int        `json:"paymentsMissed"`
	InitiatedDate  *time.Time `json:"initiatedDate"`
	AssignedToID   *uuid.UUID `json:"assignedToId"`
	Notes          string     `json:"notes"`
}

type UpdateRepossessionInput struct {
	AssignedToID   *uuid.UUID       `json:"assignedToId"`
	NoticeSentDate *time.Time       `json:"noticeSentDate"`
	RecoveryCost   *decimal.Decimal `json:"recoveryCost"`
	StorageCost    *decimal.Decimal `json:"storageCost"`
	LegalCost      *decimal.Decimal `json:"legalCost"`
	Notes          *string          `json:"notes"`
}

type CompleteRepossessionInput struct {
	ResolutionType  string `json:"resolutionType" binding:"required"`
	ResolutionNotes string `json:"resolutionNotes"`
}

// CreateRepossession opens a case against a purchase in arrears. The
// outstanding amount is captured from the purchase at initiation; the
// vehicle keeps its status until it is actually recovered.
func CreateRepossession(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreateRepossessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !models.ValidRepossessionReason(input.Reason) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid repossession reason")
		return
	}

	var purchase models.Purchase
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&purchase, "id = ?", input.PurchaseID).Error; err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Purchase not found")
		return
	}
	if purchase.IsPaidOff {
		utils.RespondWithError(c, http.StatusBadRequest, "Purchase is already settled")
		return
	}

	var open int64
	if err := config.DB.Model(&models.Repossession{}).
		Where("purchase_id = ? AND status NOT IN ?", purchase.ID,
			[]string{models.RepoCompleted, models.RepoCancelled}).
		Count(&open).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if open > 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "An open repossession already exists for this purchase")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	initiated := time.Now()
	if input.InitiatedDate != nil {
		initiated = *input.InitiatedDate
	}

	var assignedName string
	if input.AssignedToID != nil {
		var agent models.User
		if err := config.DB.Scopes(models.ForDealership(dealershipID)).
			First(&agent, "id = ?", *input.AssignedToID).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Assigned user not found")
			return
		}
		assignedName = agent.Name
	}

	var repo models.Repossession
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		number, err := services.NextRepossessionNumber(tx, dealershipID, initiated)
		if err != nil {
			return err
		}
		repo = models.Repossession{
			ID:                 uuid.New(),
			DealershipID:       dealershipID,
			RepossessionNumber: number,
			VehicleID:          purchase.VehicleID,
			ClientID:           purchase.ClientID,
			PurchaseID:         purchase.ID,
			Reason:             input.Reason,
			Status:             models.RepoPending,
			OutstandingAmount:  purchase.Balance,
			PaymentsMissed:     input.PaymentsMissed,
			InitiatedDate:      initiated,
			AssignedToID:       input.AssignedToID,
			AssignedToName:     assignedName,
			Notes:              input.Notes,
			CreatedByID:        actor.ID,
		}
		return tx.Create(&repo).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create repossession")
		return
	}

	services.LogAction(c, actor, models.ActionCreate, "Repossession",
		repo.ID.String(), repo.RepossessionNumber, models.JSONB{"reason": input.Reason})

	c.JSON(http.StatusCreated, repo)
}

// GetRepossessions lists cases, filterable by status and client
func GetRepossessions(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Vehicle").Preload("Client").
		Scopes(models.ForDealership(dealershipID))

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.Query("clientId"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var repos []models.Repossession
	if err := query.Order("initiated_date DESC").Find(&repos).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve repossessions")
		return
	}

	c.JSON(http.StatusOK, repos)
}

// GetRepossession retrieves one case
func GetRepossession(c *gin.Context) {
	repo, ok := loadRepossession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, repo)
}

// UpdateRepossession amends an open case: assignment, notice date, costs
func UpdateRepossession(c *gin.Context) {
	repo, ok := loadRepossession(c)
	if !ok {
		return
	}
	if repo.IsClosed() {
		utils.RespondWithError(c, http.StatusBadRequest, "Repossession is closed")
		return
	}

	var input UpdateRepossessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if input.AssignedToID != nil {
		var agent models.User
		if err := config.DB.Scopes(models.ForDealership(repo.DealershipID)).
			First(&agent, "id = ?", *input.AssignedToID).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Assigned user not found")
			return
		}
		updates["assigned_to_id"] = *input.AssignedToID
		updates["assigned_to_name"] = agent.Name
	}
	if input.NoticeSentDate != nil {
		updates["notice_sent_date"] = *input.NoticeSentDate
		if repo.Status == models.RepoPending {
			updates["status"] = models.RepoNoticeSent
		}
	}
	if input.RecoveryCost != nil {
		if input.RecoveryCost.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Costs cannot be negative")
			return
		}
		updates["recovery_cost"] = *input.RecoveryCost
	}
	if input.StorageCost != nil {
		if input.StorageCost.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Costs cannot be negative")
			return
		}
		updates["storage_cost"] = *input.StorageCost
	}
	if input.LegalCost != nil {
		if input.LegalCost.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Costs cannot be negative")
			return
		}
		updates["legal_cost"] = *input.LegalCost
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if len(updates) > 0 {
		if err := config.DB.Model(repo).Updates(updates).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update repossession")
			return
		}
	}

	c.JSON(http.StatusOK, repo)
}

// MarkRepossessionRecovered records the vehicle as recovered: the case
// moves to recovered and the vehicle goes to repossessed with a history row.
func MarkRepossessionRecovered(c *gin.Context) {
	repo, ok := loadRepossession(c)
	if !ok {
		return
	}
	if !services.ValidRepossessionTransition(repo.Status, models.RepoRecovered) {
		utils.RespondWithError(c, http.StatusBadRequest, "Repossession cannot be marked recovered from status "+repo.Status)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	recovered := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(repo).Updates(map[string]interface{}{
			"status":        models.RepoRecovered,
			"recovery_date": recovered,
		}).Error; err != nil {
			return err
		}

		oldStatus := repo.Vehicle.Status
		if err := tx.Model(&models.Vehicle{}).
			Where("id = ?", repo.VehicleID).
			Update("status", models.VehicleRepossessed).Error; err != nil {
			return err
		}
		history := models.VehicleHistory{
			ID:            uuid.New(),
			DealershipID:  repo.DealershipID,
			VehicleID:     repo.VehicleID,
			OldStatus:     oldStatus,
			NewStatus:     models.VehicleRepossessed,
			ChangedByID:   actor.ID,
			ChangedByName: actor.Name,
			Notes:         "Recovered under " + repo.RepossessionNumber,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to mark repossession recovered")
		return
	}

	services.LogAction(c, actor, models.ActionStatusChange, "Repossession",
		repo.ID.String(), repo.RepossessionNumber, models.JSONB{"to": models.RepoRecovered})

	repo.Status = models.RepoRecovered
	repo.RecoveryDate = &recovered
	c.JSON(http.StatusOK, repo)
}

// CompleteRepossession resolves a recovered case
func CompleteRepossession(c *gin.Context) {
	repo, ok := loadRepossession(c)
	if !ok {
		return
	}
	if !services.ValidRepossessionTransition(repo.Status, models.RepoCompleted) {
		utils.RespondWithError(c, http.StatusBadRequest, "Only recovered repossessions can be completed")
		return
	}

	var input CompleteRepossessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !models.ValidRepossessionResolution(input.ResolutionType) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid resolution type")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	completed := time.Now()
	if err := config.DB.Model(repo).Updates(map[string]interface{}{
		"status":           models.RepoCompleted,
		"completion_date":  completed,
		"resolution_type":  input.ResolutionType,
		"resolution_notes": input.ResolutionNotes,
	}).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to complete repossession")
		return
	}

	services.LogAction(c, actor, models.ActionStatusChange, "Repossession",
		repo.ID.String(), repo.RepossessionNumber,
		models.JSONB{"to": models.RepoCompleted, "resolution": input.ResolutionType})

	repo.Status = models.RepoCompleted
	repo.CompletionDate = &completed
	repo.ResolutionType = input.ResolutionType
	c.JSON(http.StatusOK, repo)
}

// CancelRepossession calls off an open case
func CancelRepossession(c *gin.Context) {
	repo, ok := loadRepossession(c)
	if !ok {
		return
	}
	if !services.ValidRepossessionTransition(repo.Status, models.RepoCancelled) {
		utils.RespondWithError(c, http.StatusBadRequest, "Repossession is already closed")
		return
	}

	if err := config.DB.Model(repo).Update("status", models.RepoCancelled).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel repossession")
		return
	}

	repo.Status = models.RepoCancelled
	c.JSON(http.StatusOK, repo)
}

func loadRepossession(c *gin.Context) (*models.Repossession, bool) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return nil, false
	}

	repoUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid repossession ID format")
		return nil, false
	}

	var repo models.Repossession
	if err := config.DB.Preload("Vehicle").Preload("Client").
		Scopes(models.ForDealership(dealershipID)).
		First(&repo, "id = ?", repoUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Repossession not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &repo, true
}
