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
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"required"`
	Password       string `json:"password" binding:"required,min=8"`
	DealershipName string `json:"dealershipName" binding:"required"`
	DealershipCode string `json:"dealershipCode"` // defaults to a slug of the name
	Address        string `json:"address"`
	Currency       string `json:"currency"`
}

type LoginInput struct {
	Identifier     string `json:"identifier" binding:"required"` // Can be email or phone
	Password       string `json:"password" binding:"required"`
	DealershipCode string `json:"dealershipCode"` // disambiguates identical identifiers across tenants
}

// Register bootstraps a new dealership with its admin user and default
// settings in one transaction.
func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
		return
	}

	code := utils.Slugify(input.DealershipCode)
	if code == "" {
		code = utils.Slugify(input.DealershipName)
	}
	if code == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Dealership code cannot be empty")
		return
	}

	var existing models.Dealership
	result := config.DB.Where("code = ?", code).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Dealership code already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "KES"
	}

	dealership := models.Dealership{
		ID:       uuid.New(),
		Name:     input.DealershipName,
		Code:     code,
		Email:    input.Email,
		Phone:    input.Phone,
		Address:  input.Address,
		Currency: currency,
	}
	user := models.User{
		Email:        input.Email,
		Phone:        input.Phone,
		Name:         input.Name,
		Password:     input.Password, // Will be hashed in BeforeCreate hook
		Role:         models.RoleAdmin,
		DealershipID: dealership.ID,
	}
	settings := models.DefaultSettings(dealership.ID)
	settings.Currency = currency

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dealership).Error; err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&settings).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create dealership")
		return
	}

	token, err := utils.GenerateToken(user.ID.String(), dealership.ID.String(), user.Role)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	setAuthCookie(c, token)

	services.LogAction(c, &user, models.ActionCreate, "Dealership", dealership.ID.String(), dealership.Name, nil)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"role":       user.Role,
			"dealership": dealership.Name,
		},
	})
}

// Login authenticates by email or phone. When the same identifier exists in
// more than one dealership the dealership code narrows it down.
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	identifier := strings.TrimSpace(input.Identifier)

	query := config.DB.Where("email = ? OR phone = ?", identifier, identifier)
	if code := utils.Slugify(input.DealershipCode); code != "" {
		query = query.Joins("JOIN dealerships ON dealerships.id = users.dealership_id").
			Where("dealerships.code = ?", code)
	}

	var candidates []models.User
	if err := query.Find(&candidates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	var user *models.User
	for i := range candidates {
		if utils.CheckPasswordHash(input.Password, candidates[i].Password) {
			user = &candidates[i]
			break
		}
	}
	if user == nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsActive {
		utils.RespondWithError(c, http.StatusForbidden, "Account is disabled")
		return
	}

	token, err := utils.GenerateToken(user.ID.String(), user.DealershipID.String(), user.Role)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now()
	config.DB.Model(user).Update("last_login", &now)

	setAuthCookie(c, token)

	services.LogAction(c, user, models.ActionLogin, "User", user.ID.String(), user.Email, nil)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// Logout clears the auth cookie.
func Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user with their dealership.
func Me(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusInternalServerError, "User ID not found in context")
		return
	}

	var user models.User
	if err := config.DB.Preload("Dealership").First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"phone": user.Phone,
			"role":  user.Role,
			"dealership": gin.H{
				"id":       user.Dealership.ID,
				"name":     user.Dealership.Name,
				"code":     user.Dealership.Code,
				"currency": user.Dealership.Currency,
			},
		},
	})
}

func setAuthCookie(c *gin.Context, token string) {
	expiryHours := 72
	maxAge := expiryHours * 3600
	c.SetCookie("token", token, maxAge, "/", "", true, true)
}
