// controllers/expense.go
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

type CreateExpenseCategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreateExpenseInput struct {
	CategoryID    uuid.UUID       `json:"categoryId" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	ExpenseDate   *time.Time      `json:"expenseDate"`
	Vendor        string          `json:"vendor"`
	Description   string          `json:"description" binding:"required"`
	ReceiptNumber string          `json:"receiptNumber"`
}

type UpdateExpenseInput struct {
	CategoryID    *uuid.UUID       `json:"categoryId"`
	Amount        *decimal.Decimal `json:"amount"`
	ExpenseDate   *time.Time       `json:"expenseDate"`
	Vendor        *string          `json:"vendor"`
	Description   *string          `json:"description"`
	ReceiptNumber *string          `json:"receiptNumber"`
}

// CreateExpenseCategory adds a category. Manager or admin.
func CreateExpenseCategory(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreateExpenseCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existing models.ExpenseCategory
	result := config.DB.Scopes(models.ForDealership(dealershipID)).
		Where("name = ?", input.Name).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Category already exists")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	category := models.ExpenseCategory{
		ID:           uuid.New(),
		DealershipID: dealershipID,
		Name:         input.Name,
		Description:  input.Description,
	}
	if err := config.DB.Create(&category).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// GetExpenseCategories lists the tenant's categories
func GetExpenseCategories(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var categories []models.ExpenseCategory
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		Order("name").Find(&categories).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	c.JSON(http.StatusOK, categories)
}

// CreateExpense records an expense in pending state
func CreateExpense(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		utils.RespondWithError(c, http.StatusBadRequest, "Amount must be greater than zero")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var category models.ExpenseCategory
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&category, "id = ?", input.CategoryID).Error; err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Category not found")
		return
	}

	expenseDate := time.Now()
	if input.ExpenseDate != nil {
		expenseDate = *input.ExpenseDate
	}

	expense := models.Expense{
		ID:            uuid.New(),
		DealershipID:  dealershipID,
		CategoryID:    category.ID,
		Amount:        input.Amount,
		ExpenseDate:   expenseDate,
		Vendor:        input.Vendor,
		Description:   input.Description,
		ReceiptNumber: input.ReceiptNumber,
		Status:        models.ExpensePending,
		CreatedByID:   actor.ID,
	}
	if err := config.DB.Create(&expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create expense")
		return
	}

	expense.Category = category
	c.JSON(http.StatusCreated, expense)
}

// GetExpenses lists expenses, filterable by status, category and date range
func GetExpenses(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Category").
		Scopes(models.ForDealership(dealershipID))

	if status := c.Query("status"); status != "" {
		if !models.ValidExpenseStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}
	if categoryID := c.Query("category"); categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid category filter")
			return
		}
		query = query.Where("category_id = ?", id)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("expense_date >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("expense_date < ?", t.AddDate(0, 0, 1))
	}

	var expenses []models.Expense
	if err := query.Order("expense_date DESC").Find(&expenses).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve expenses")
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// UpdateExpense edits a pending expense
func UpdateExpense(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	expenseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid expense ID format")
		return
	}

	var input UpdateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var expense models.Expense
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&expense, "id = ?", expenseUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if expense.Status != models.ExpensePending {
		utils.RespondWithError(c, http.StatusBadRequest, "Only pending expenses can be edited")
		return
	}

	if input.CategoryID != nil {
		var category models.ExpenseCategory
		if err := config.DB.Scopes(models.ForDealership(dealershipID)).
			First(&category, "id = ?", *input.CategoryID).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Category not found")
			return
		}
		expense.CategoryID = category.ID
	}
	if input.Amount != nil {
		if input.Amount.LessThanOrEqual(decimal.Zero) {
			utils.RespondWithError(c, http.StatusBadRequest, "Amount must be greater than zero")
			return
		}
		expense.Amount = *input.Amount
	}
	if input.ExpenseDate != nil {
		expense.ExpenseDate = *input.ExpenseDate
	}
	if input.Vendor != nil {
		expense.Vendor = *input.Vendor
	}
	if input.Description != nil {
		expense.Description = *input.Description
	}
	if input.ReceiptNumber != nil {
		expense.ReceiptNumber = *input.ReceiptNumber
	}

	if err := config.DB.Save(&expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update expense")
		return
	}

	c.JSON(http.StatusOK, expense)
}

// TransitionExpense moves an expense through its approval flow. Routes
// bind it as approve, reject and mark-paid. Manager or admin.
func TransitionExpense(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		dealershipID, err := utils.GetDealershipID(c)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
			return
		}

		expenseUUID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid expense ID format")
			return
		}

		actor, err := currentUser(c)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
			return
		}

		var expense models.Expense
		if err := config.DB.Scopes(models.ForDealership(dealershipID)).
			First(&expense, "id = ?", expenseUUID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}

		if !validExpenseTransition(expense.Status, target) {
			utils.RespondWithError(c, http.StatusBadRequest,
				"Cannot move a "+expense.Status+" expense to "+target)
			return
		}

		oldStatus := expense.Status
		expense.Status = target
		if target == models.ExpenseApproved {
			expense.ApprovedByID = &actor.ID
		}
		if err := config.DB.Save(&expense).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update expense")
			return
		}

		services.LogAction(c, actor, models.ActionStatusChange, "Expense",
			expense.ID.String(), expense.Description,
			models.JSONB{"from": oldStatus, "to": target})

		c.JSON(http.StatusOK, expense)
	}
}

func validExpenseTransition(from, to string) bool {
	switch to {
	case models.ExpenseApproved, models.ExpenseRejected:
		return from == models.ExpensePending
	case models.ExpensePaid:
		return from == models.ExpenseApproved
	}
	return false
}

// DeleteExpense removes a pending or rejected expense
func DeleteExpense(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	expenseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid expense ID format")
		return
	}

	var expense models.Expense
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&expense, "id = ?", expenseUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if expense.Status == models.ExpenseApproved || expense.Status == models.ExpensePaid {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot delete an approved expense")
		return
	}

	if err := config.DB.Delete(&expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
