// services/audit.go
package services

import (
	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LogAction writes an audit entry for a domain event. The actor is passed
// explicitly by the caller. Failures are logged and swallowed: the audit
// trail must never break the request that produced it.
func LogAction(c *gin.Context, actor *models.User, action, model, objectID, objectRepr string, changes models.JSONB) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil && actor != nil {
		dealershipID = actor.DealershipID
		err = nil
	}
	if err != nil {
		logrus.WithError(err).Warn("audit entry dropped: no dealership")
		return
	}

	entry := models.AuditLog{
		DealershipID: dealershipID,
		Action:       action,
		Model:        model,
		ObjectID:     objectID,
		ObjectRepr:   objectRepr,
		Changes:      changes,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		Path:         c.Request.URL.Path,
		Method:       c.Request.Method,
		Status:       c.Writer.Status(),
	}
	if actor != nil {
		id := actor.ID
		entry.UserID = &id
		entry.UserEmail = actor.Email
	}

	if err := config.DB.Create(&entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action": action,
			"model":  model,
		}).Warn("failed to write audit entry")
	}
}

var auditSkipPaths = map[string]bool{
	"/health":       true,
	"/auth/login":   true,
	"/auth/refresh": true,
}

// AuditMiddleware records every mutating request after it completes.
// Registered behind the auth middleware so the claims are on the context.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case "POST", "PUT", "PATCH", "DELETE":
		default:
			return
		}
		if auditSkipPaths[c.Request.URL.Path] {
			return
		}

		dealershipID, err := utils.GetDealershipID(c)
		if err != nil {
			return
		}

		entry := models.AuditLog{
			DealershipID: dealershipID,
			Action:       actionForMethod(c.Request.Method),
			Path:         c.Request.URL.Path,
			Method:       c.Request.Method,
			Status:       c.Writer.Status(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
		}
		if userID, err := utils.GetUserID(c); err == nil {
			entry.UserID = &userID
		}

		if err := config.DB.Create(&entry).Error; err != nil {
			logrus.WithError(err).Warn("failed to write request audit entry")
		}
	}
}

func actionForMethod(method string) string {
	switch method {
	case "POST":
		return models.ActionCreate
	case "PUT", "PATCH":
		return models.ActionUpdate
	case "DELETE":
		return models.ActionDelete
	}
	return models.ActionUpdate
}
