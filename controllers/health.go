// controllers/health.go
package controllers

import (
	"net/http"
	"time"

	"dealerpro-backend/config"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports process and database health
func HealthCheck(c *gin.Context) {
	dbStatus := "up"
	sqlDB, err := config.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	status := http.StatusOK
	if dbStatus == "down" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
		"db":     dbStatus,
	})
}
