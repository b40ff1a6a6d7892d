// controllers/user.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/services"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateUserInput defines the expected JSON structure for a staff account.
// When no password is given a random one is generated and returned once.
type CreateUserInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password"`
}

type userView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	LastLogin any       `json:"lastLogin"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		IsActive: u.IsActive,
		LastLogin: func() any {
			if u.LastLogin == nil {
				return nil
			}
			return *u.LastLogin
		}(),
	}
}

// CreateUser adds a staff account to the dealership. Admin only.
func CreateUser(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !models.ValidRole(input.Role) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid role")
		return
	}
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	var existing models.User
	result := config.DB.Scopes(models.ForDealership(dealershipID)).
		Where("email = ?", email).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	password := input.Password
	generated := false
	if password == "" {
		password = utils.GenerateRandomString(12)
		generated = true
	} else if len(password) < 8 {
		utils.RespondWithError(c, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	user := models.User{
		DealershipID: dealershipID,
		Name:         input.Name,
		Email:        email,
		Phone:        input.Phone,
		Password:     password, // hashed in BeforeCreate
		Role:         input.Role,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	services.LogAction(c, actor, models.ActionCreate, "User", user.ID.String(), user.Email, nil)

	response := gin.H{"user": newUserView(&user)}
	if generated {
		// one-time disclosure; not stored anywhere in the clear
		response["temporaryPassword"] = password
	}
	c.JSON(http.StatusCreated, response)
}

// GetUsers lists the dealership's staff accounts. Admin only.
func GetUsers(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var users []models.User
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		Order("created_at").Find(&users).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	c.JSON(http.StatusOK, views)
}

// UpdateUser changes a staff account. Admin only.
func UpdateUser(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	userUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var user models.User
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&user, "id = ?", userUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
			return
		}
		user.Phone = *input.Phone
	}
	if input.Role != nil {
		if !models.ValidRole(*input.Role) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid role")
			return
		}
		if user.ID == actor.ID && *input.Role != models.RoleAdmin {
			utils.RespondWithError(c, http.StatusBadRequest, "Cannot demote your own account")
			return
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		if user.ID == actor.ID && !*input.IsActive {
			utils.RespondWithError(c, http.StatusBadRequest, "Cannot deactivate your own account")
			return
		}
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			utils.RespondWithError(c, http.StatusBadRequest, "Password must be at least 8 characters")
			return
		}
		hashed, err := utils.HashPassword(*input.Password)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		user.Password = hashed
	}

	// Save would re-trigger no hooks here; BeforeCreate only runs on insert
	if err := config.DB.Save(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update user")
		return
	}

	services.LogAction(c, actor, models.ActionUpdate, "User", user.ID.String(), user.Email, nil)

	c.JSON(http.StatusOK, newUserView(&user))
}

// DeleteUser removes a staff account. Admin only; self-deletion refused.
func DeleteUser(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	userUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}
	if actor.ID == userUUID {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	var user models.User
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&user, "id = ?", userUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Delete(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	services.LogAction(c, actor, models.ActionDelete, "User", user.ID.String(), user.Email, nil)

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
