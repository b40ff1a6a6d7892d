// controllers/reminder.go
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
	"gorm.io/gorm"
)

// CreateReminderInput defines the expected JSON structure for a manually
// created reminder (call/letter follow-ups mostly).
type CreateReminderInput struct {
	ClientID      uuid.UUID  `json:"clientId" binding:"required"`
	ScheduleID    *uuid.UUID `json:"scheduleId"`
	ReminderType  string     `json:"reminderType" binding:"required"`
	Message       string     `json:"message" binding:"required"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

type RespondReminderInput struct {
	ResponseNotes string `json:"responseNotes" binding:"required"`
}

// GetReminders lists reminders, filterable by status, type and date range
func GetReminders(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Client").
		Scopes(models.ForDealership(dealershipID))

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if reminderType := c.Query("type"); reminderType != "" {
		if !models.ValidReminderType(reminderType) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid type filter")
			return
		}
		query = query.Where("reminder_type = ?", reminderType)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("scheduled_date >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("scheduled_date < ?", t.AddDate(0, 0, 1))
	}

	var reminders []models.PaymentReminder
	if err := query.Order("scheduled_date DESC").Find(&reminders).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reminders")
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// CreateReminder creates a manual reminder for a client
func CreateReminder(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreateReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !models.ValidReminderType(input.ReminderType) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reminder type")
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

	if input.ScheduleID != nil {
		var row models.PaymentSchedule
		if err := config.DB.Scopes(models.ForDealership(dealershipID)).
			First(&row, "id = ?", *input.ScheduleID).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Schedule row not found")
			return
		}
	}

	scheduledDate := utils.BeginningOfDay(time.Now())
	if input.ScheduledDate != nil {
		scheduledDate = utils.BeginningOfDay(*input.ScheduledDate)
	}

	reminder := models.PaymentReminder{
		ID:            uuid.New(),
		DealershipID:  dealershipID,
		ClientID:      client.ID,
		ScheduleID:    input.ScheduleID,
		ReminderType:  input.ReminderType,
		Status:        models.ReminderPending,
		Message:       input.Message,
		ScheduledDate: scheduledDate,
		CreatedByID:   &actor.ID,
	}
	if err := config.DB.Create(&reminder).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create reminder")
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// RespondToReminder records a client's response to a reminder
func RespondToReminder(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	reminderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reminder ID format")
		return
	}

	var input RespondReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var reminder models.PaymentReminder
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&reminder, "id = ?", reminderUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Reminder not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	reminder.Status = models.ReminderResponded
	reminder.ResponseNotes = input.ResponseNotes
	if err := config.DB.Save(&reminder).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update reminder")
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// RunReminderSweep triggers the daily sweep for the caller's dealership
// outside the cron window. Admin only.
func RunReminderSweep(reminderService *services.ReminderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dealershipID, err := utils.GetDealershipID(c)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
			return
		}

		var dealership models.Dealership
		if err := config.DB.First(&dealership, "id = ?", dealershipID).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}

		reminderService.ProcessDealership(&dealership)

		c.JSON(http.StatusOK, gin.H{"message": "Reminder sweep completed"})
	}
}
