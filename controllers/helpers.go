// controllers/helpers.go
package controllers

import (
	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// currentUser loads the authenticated user from the context claims.
func currentUser(c *gin.Context) (*models.User, error) {
	userID, err := utils.GetUserID(c)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
