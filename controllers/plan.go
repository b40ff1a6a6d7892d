// controllers/plan.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
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

// CreatePlanInput defines the expected JSON structure for creating a plan.
// Amounts default to the purchase's terms, the interest rate to the
// dealership's configured default.
type CreatePlanInput struct {
	PurchaseID           uuid.UUID        `json:"purchaseId" binding:"required"`
	TotalAmount          *decimal.Decimal `json:"totalAmount"`
	DepositAmount        *decimal.Decimal `json:"depositAmount"`
	NumberOfInstallments int              `json:"numberOfInstallments" binding:"required"`
	InterestRate         *decimal.Decimal `json:"interestRate"`
	StartDate            *time.Time       `json:"startDate"`
	PaymentDay           int              `json:"paymentDay"`
	Notes                string           `json:"notes"`
}

// UpdatePlanInput changes plan terms; the unpaid schedule is regenerated
type UpdatePlanInput struct {
	NumberOfInstallments *int             `json:"numberOfInstallments"`
	InterestRate         *decimal.Decimal `json:"interestRate"`
	StartDate            *time.Time       `json:"startDate"`
	PaymentDay           *int             `json:"paymentDay"`
	Notes                *string          `json:"notes"`
}

type planView struct {
	models.InstallmentPlan
	BalanceAfterDeposit decimal.Decimal         `json:"balanceAfterDeposit"`
	TotalWithInterest   decimal.Decimal         `json:"totalWithInterest"`
	MonthlyInstallment  decimal.Decimal         `json:"monthlyInstallment"`
	PaymentProgress     decimal.Decimal         `json:"paymentProgress"`
	Overdue             bool                    `json:"overdue"`
	NextDue             *models.PaymentSchedule `json:"nextDue"`
}

func newPlanView(plan models.InstallmentPlan) planView {
	return planView{
		InstallmentPlan:     plan,
		BalanceAfterDeposit: plan.BalanceAfterDeposit(),
		TotalWithInterest:   plan.TotalWithInterest(),
		MonthlyInstallment:  plan.MonthlyInstallment(),
		PaymentProgress:     plan.PaymentProgress(),
		Overdue:             plan.IsOverdue(time.Now()),
		NextDue:             services.NextDueRow(plan.Schedule),
	}
}

// CreatePlan creates an installment plan and its full payment schedule in
// one transaction.
func CreatePlan(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	var input CreatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var purchase models.Purchase
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&purchase, "id = ?", input.PurchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Purchase not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var existing models.InstallmentPlan
	result := config.DB.Where("purchase_id = ?", purchase.ID).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Purchase already has an installment plan")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	totalAmount := purchase.PurchasePrice
	if input.TotalAmount != nil {
		totalAmount = *input.TotalAmount
	}
	depositAmount := purchase.DepositPaid
	if input.DepositAmount != nil {
		depositAmount = *input.DepositAmount
	}

	interestRate := decimal.Zero
	if input.InterestRate != nil {
		interestRate = *input.InterestRate
	} else {
		var settings models.SystemSettings
		if err := config.DB.Where("dealership_id = ?", dealershipID).
			First(&settings).Error; err == nil {
			interestRate = settings.DefaultInterestRate
		}
	}

	startDate := utils.BeginningOfDay(time.Now())
	if input.StartDate != nil {
		startDate = utils.BeginningOfDay(*input.StartDate)
	}
	if startDate.Before(utils.BeginningOfDay(purchase.PurchaseDate)) {
		utils.RespondWithError(c, http.StatusBadRequest, "Start date cannot be before the purchase date")
		return
	}

	paymentDay := input.PaymentDay
	if paymentDay == 0 {
		paymentDay = startDate.Day()
	}

	plan := models.InstallmentPlan{
		ID:                   uuid.New(),
		DealershipID:         dealershipID,
		PurchaseID:           purchase.ID,
		TotalAmount:          totalAmount,
		DepositAmount:        depositAmount,
		NumberOfInstallments: input.NumberOfInstallments,
		InterestRate:         interestRate,
		StartDate:            startDate,
		PaymentDay:           paymentDay,
		Status:               models.PlanActive,
		Notes:                input.Notes,
	}

	if err := services.ValidatePlanTerms(&plan); err != nil {
		if services.IsValidation(err) {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to validate plan")
		}
		return
	}
	if !services.PlanConsistent(&plan) {
		utils.RespondWithError(c, http.StatusBadRequest, "Plan amounts are inconsistent")
		return
	}

	rows := services.GenerateScheduleRows(&plan)

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create plan")
		return
	}

	plan.Schedule = rows
	services.LogAction(c, actor, models.ActionCreate, "InstallmentPlan", plan.ID.String(),
		"Plan for purchase "+purchase.ID.String(), nil)

	c.JSON(http.StatusCreated, newPlanView(plan))
}

// GetPlans lists plans; overdue=true narrows to plans with arrears
func GetPlans(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	query := config.DB.Preload("Schedule", func(db *gorm.DB) *gorm.DB {
		return db.Order("payment_schedules.installment_number")
	}).Preload("Purchase.Client").
		Scopes(models.ForDealership(dealershipID))

	if status := c.Query("status"); status != "" {
		if !models.ValidPlanStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}

	var plans []models.InstallmentPlan
	if err := query.Order("created_at DESC").Find(&plans).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve plans")
		return
	}

	onlyOverdue := c.Query("overdue") == "true"
	now := time.Now()

	views := make([]planView, 0, len(plans))
	for i := range plans {
		if onlyOverdue && !plans[i].IsOverdue(now) {
			continue
		}
		views = append(views, newPlanView(plans[i]))
	}

	c.JSON(http.StatusOK, views)
}

// GetPlan retrieves one plan with its schedule
func GetPlan(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	planUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var plan models.InstallmentPlan
	if err := config.DB.Preload("Schedule", func(db *gorm.DB) *gorm.DB {
		return db.Order("payment_schedules.installment_number")
	}).Preload("Purchase.Client").Preload("Purchase.Vehicle").
		Scopes(models.ForDealership(dealershipID)).
		First(&plan, "id = ?", planUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, newPlanView(plan))
}

// UpdatePlan changes plan terms and regenerates the unpaid schedule.
// Pass force=true to replay recorded payments against the new rows.
func UpdatePlan(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	planUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var input UpdatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var plan models.InstallmentPlan
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&plan, "id = ?", planUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if plan.Status != models.PlanActive {
		utils.RespondWithError(c, http.StatusBadRequest, "Only active plans can be updated")
		return
	}

	termsChange := false
	if input.NumberOfInstallments != nil {
		plan.NumberOfInstallments = *input.NumberOfInstallments
		termsChange = true
	}
	if input.InterestRate != nil {
		plan.InterestRate = *input.InterestRate
		termsChange = true
	}
	if input.StartDate != nil {
		plan.StartDate = utils.BeginningOfDay(*input.StartDate)
		termsChange = true
	}
	if input.PaymentDay != nil {
		plan.PaymentDay = *input.PaymentDay
		termsChange = true
	}
	if input.Notes != nil {
		plan.Notes = *input.Notes
	}

	if err := services.ValidatePlanTerms(&plan); err != nil {
		if services.IsValidation(err) {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to validate plan")
		}
		return
	}

	force := c.Query("force") == "true"
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&plan).Error; err != nil {
			return err
		}
		if termsChange {
			return services.RegenerateSchedule(tx, &plan, force)
		}
		return nil
	})
	if err != nil {
		if services.IsValidation(err) {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update plan")
		}
		return
	}

	reloadPlan(c, dealershipID, plan.ID)
}

// RegeneratePlanSchedule rebuilds the schedule from the stored terms
func RegeneratePlanSchedule(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	planUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var plan models.InstallmentPlan
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&plan, "id = ?", planUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if plan.Status == models.PlanCancelled {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot regenerate a cancelled plan")
		return
	}

	force := c.Query("force") == "true"
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		return services.RegenerateSchedule(tx, &plan, force)
	})
	if err != nil {
		if services.IsValidation(err) {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to regenerate schedule")
		}
		return
	}

	reloadPlan(c, dealershipID, plan.ID)
}

// CancelPlan marks a plan cancelled; its rows stop counting as overdue
func CancelPlan(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	planUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	var plan models.InstallmentPlan
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&plan, "id = ?", planUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if plan.Status == models.PlanCompleted {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot cancel a completed plan")
		return
	}

	if err := config.DB.Model(&plan).Update("status", models.PlanCancelled).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel plan")
		return
	}

	services.LogAction(c, actor, models.ActionStatusChange, "InstallmentPlan", plan.ID.String(),
		"", models.JSONB{"to": models.PlanCancelled})

	c.JSON(http.StatusOK, gin.H{"message": "Plan cancelled"})
}

// GetPlanSchedule lists a plan's installment rows
func GetPlanSchedule(c *gin.Context) {
	dealershipID, err := utils.GetDealershipID(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
		return
	}

	planUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var plan models.InstallmentPlan
	if err := config.DB.Scopes(models.ForDealership(dealershipID)).
		First(&plan, "id = ?", planUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var rows []models.PaymentSchedule
	if err := config.DB.Where("plan_id = ?", plan.ID).
		Order("installment_number").Find(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve schedule")
		return
	}

	// ?dueWithin=N narrows to unpaid rows falling due in the next N days
	if dueWithin := c.Query("dueWithin"); dueWithin != "" {
		days, err := strconv.Atoi(dueWithin)
		if err != nil || days < 1 {
			utils.RespondWithError(c, http.StatusBadRequest, "dueWithin must be a positive number of days")
			return
		}
		c.JSON(http.StatusOK, services.UpcomingRows(rows, time.Now(), days))
		return
	}

	c.JSON(http.StatusOK, rows)
}

func reloadPlan(c *gin.Context, dealershipID uuid.UUID, planID uuid.UUID) {
	var plan models.InstallmentPlan
	if err := config.DB.Preload("Schedule", func(db *gorm.DB) *gorm.DB {
		return db.Order("payment_schedules.installment_number")
	}).Scopes(models.ForDealership(dealershipID)).
		First(&plan, "id = ?", planID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reload plan")
		return
	}
	c.JSON(http.StatusOK, newPlanView(plan))
}
