// controllers/payroll.go
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

type CreateEmployeeInput struct {
	FirstName   string          `json:"firstName" binding:"required"`
	LastName    string          `json:"lastName" binding:"required"`
	NationalID  string          `json:"nationalId" binding:"required"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	Position    string          `json:"position"`
	Department  string          `json:"department"`
	HireDate    *time.Time      `json:"hireDate"`
	BasicSalary decimal.Decimal `json:"basicSalary" binding:"required"`
	Allowances  decimal.Decimal `json:"allowances"`
}

type UpdateEmployeeInput struct {
	FirstName   *string          `json:"firstName"`
	LastName    *string          `json:"lastName"`
	Phone       *string          `json:"phone"`
	Email       *string          `json:"email"`
	Position    *string          `json:"position"`
	Department  *string          `json:"department"`
	BasicSalary *decimal.Decimal `json:"basicSalary"`
	Allowances  *decimal.Decimal `json:"allowances"`
	IsActive    *bool            `json:"isActive"`
}

// RunPayrollInput picks the month and optional per-employee deductions.
type RunPayrollInput struct {
	Month      string                     `json:"month" binding:"required"` // YYYY-MM
	Deductions map[string]decimal.Decimal `json:"deductions"`              // employee id -> amount
}

// CreateEmployee adds a staff record to payroll
func CreateEmployee(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.BasicSalary.LessThanOrEqual(decimal.Zero) {
		utils.RespondWithError(c, http.StatusBadRequest, "Basic salary must be greater than zero")
		return
	}
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
		return
	}

	var existing models.Employee
	result := config.DB.Scopes(models.ForDealership(dealershipID)).
		Where("national_id = ?", input.NationalID).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Employee with this national ID already exists")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	hireDate := time.Now()
	if input.HireDate != nil {
		hireDate = *input.HireDate
	}

	employee := models.Employee{
		ID:           uuid.New(),
		DealershipID: dealershipID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		NationalID:   input.NationalID,
		Phone:        input.Phone,
		Email:        input.Email,
		Position:     input.Position,
		Department:   input.Department,
		HireDate:     hireDate,
		BasicSalary:  input.BasicSalary,
		Allowances:   input.Allowances,
		IsActive:     true,
	}
	if err := config.DB.Create(&employee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// GetEmployees lists employees; active=true narrows to active staff
func GetEmployees(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Scopes(models.ForDealership(dealershipID))
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var employees []models.Employee
	if err := query.Order("last_name, first_name").Find(&employees).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve employees")
		return
	}

	c.JSON(http.StatusOK, employees)
}

// UpdateEmployee edits a staff record
func UpdateEmployee(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	employeeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	var input UpdateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var employee models.Employee
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&employee, "id = ?", employeeUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.FirstName != nil {
		employee.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		employee.LastName = *input.LastName
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
			return
		}
		employee.Phone = *input.Phone
	}
	if input.Email != nil {
		employee.Email = *input.Email
	}
	if input.Position != nil {
		employee.Position = *input.Position
	}
	if input.Department != nil {
		employee.Department = *input.Department
	}
	if input.BasicSalary != nil {
		if input.BasicSalary.LessThanOrEqual(decimal.Zero) {
			utils.RespondWithError(c, http.StatusBadRequest, "Basic salary must be greater than zero")
			return
		}
		employee.BasicSalary = *input.BasicSalary
	}
	if input.Allowances != nil {
		if input.Allowances.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Allowances cannot be negative")
			return
		}
		employee.Allowances = *input.Allowances
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&employee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update employee")
		return
	}

	c.JSON(http.StatusOK, employee)
}

// RunPayroll generates draft payslips for all active employees for the
// given month, skipping ones that already exist. Admin or accountant.
func RunPayroll(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input RunPayrollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	month, err := time.Parse("2006-01", input.Month)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid month, expected YYYY-MM")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var employees []models.Employee
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		Where("is_active = ?", true).Find(&employees).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve employees")
		return
	}

	var created []models.Payslip
	skipped := 0

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		for i := range employees {
			employee := &employees[i]

			var existing int64
			if err := tx.Model(&models.Payslip{}).
				Where("employee_id = ? AND month = ?", employee.ID, utils.BeginningOfMonth(month)).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				skipped++
				continue
			}

			deductions := decimal.Zero
			if d, ok := input.Deductions[employee.ID.String()]; ok {
				deductions = d
			}

			payslip, err := services.BuildPayslip(employee, month, deductions, actor.ID)
			if err != nil {
				return err
			}
			if err := tx.Create(&payslip).Error; err != nil {
				return err
			}
			created = append(created, payslip)
		}
		return nil
	})
	if err != nil {
		if services.IsValidation(err) {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to run payroll")
		}
		return
	}

	services.LogAction(c, actor, models.ActionCreate, "Payslip", "",
		"Payroll run "+input.Month, models.JSONB{"created": len(created), "skipped": skipped})

	c.JSON(http.StatusCreated, gin.H{
		"month":    input.Month,
		"created":  len(created),
		"skipped":  skipped,
		"payslips": created,
	})
}

// GetPayslips lists payslips for a month (or all)
func GetPayslips(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Employee").
		Scopes(models.ForDealership(dealershipID))

	if monthStr := c.Query("month"); monthStr != "" {
		month, err := time.Parse("2006-01", monthStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid month, expected YYYY-MM")
			return
		}
		query = query.Where("month = ?", utils.BeginningOfMonth(month))
	}

	var payslips []models.Payslip
	if err := query.Order("month DESC").Find(&payslips).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payslips")
		return
	}

	c.JSON(http.StatusOK, payslips)
}

// TransitionPayslip moves a payslip through draft -> approved -> paid.
// Admin or accountant.
func TransitionPayslip(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		dealershipID, err := utils.GetDealershipID(c)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
			return
		}

		payslipUUID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid payslip ID format")
			return
		}

		var payslip models.Payslip
		if err := config.DB.Scopes(models.ForDealership(dealershipID)).
			First(&payslip, "id = ?", payslipUUID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusNotFound, "Payslip not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}

		valid := (target == models.PayslipApproved && payslip.Status == models.PayslipDraft) ||
			(target == models.PayslipPaid && payslip.Status == models.PayslipApproved)
		if !valid {
			utils.RespondWithError(c, http.StatusBadRequest,
				"Cannot move a "+payslip.Status+" payslip to "+target)
			return
		}

		if err := config.DB.Model(&payslip).Update("status", target).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update payslip")
			return
		}

		payslip.Status = target
		c.JSON(http.StatusOK, payslip)
	}
}
