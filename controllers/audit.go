// controllers/audit.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetAuditLogs lists the tenant's audit trail, newest first. Admin only.
// Filters: user, action, model, from/to date, paginated with page/limit.
func GetAuditLogs(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Model(&models.AuditLog{}).
		Scopes(models.ForDealership(dealershipID))

	if userID := c.Query("user"); userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid user filter")
			return
		}
		query = query.Where("user_id = ?", id)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if model := c.Query("model"); model != "" {
		query = query.Where("model = ?", model)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("created_at >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count audit entries")
		return
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve audit log")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}
