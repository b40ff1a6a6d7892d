package routes

import (
	"strings"

	"dealerpro-backend/config"
	"dealerpro-backend/controllers"
	"dealerpro-backend/services"
	"dealerpro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(reminderService *services.ReminderService, rateService *services.RateService) *gin.Engine {
	r := gin.Default()

	allowedOrigins := strings.Split(config.GetEnv("CORS_ORIGINS", "http://localhost:3000"), ",")
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	r.GET("/health", controllers.HealthCheck)

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
		auth.POST("/logout", controllers.Logout)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	api.Use(services.AuditMiddleware())
	{
		// Vehicle routes
		vehicles := api.Group("/vehicles")
		{
			vehicles.POST("", controllers.CreateVehicle)
			vehicles.GET("", controllers.GetVehicles)
			vehicles.GET("/:id", controllers.GetVehicle)
			vehicles.PUT("/:id", controllers.UpdateVehicle)
			vehicles.POST("/:id/status", controllers.ChangeVehicleStatus)
			vehicles.GET("/:id/history", controllers.GetVehicleHistory)
			vehicles.DELETE("/:id", controllers.DeleteVehicle)
		}

		// Client routes
		clients := api.Group("/clients")
		{
			clients.POST("", controllers.CreateClient)
			clients.GET("", controllers.GetClients)
			clients.GET("/:id", controllers.GetClient)
			clients.PUT("/:id", controllers.UpdateClient)
			clients.DELETE("/:id", controllers.DeleteClient)
		}

		// Purchase routes
		purchases := api.Group("/purchases")
		{
			purchases.POST("", controllers.CreatePurchase)
			purchases.GET("", controllers.GetPurchases)
			purchases.GET("/:id", controllers.GetPurchase)
			purchases.PUT("/:id", controllers.UpdatePurchase)
			purchases.DELETE("/:id", utils.RequireRole("admin"), controllers.DeletePurchase)
		}

		// Installment plan routes
		plans := api.Group("/plans")
		{
			plans.POST("", controllers.CreatePlan)
			plans.GET("", controllers.GetPlans)
			plans.GET("/:id", controllers.GetPlan)
			plans.PUT("/:id", controllers.UpdatePlan)
			plans.POST("/:id/regenerate", utils.RequireRole("admin", "manager"), controllers.RegeneratePlanSchedule)
			plans.POST("/:id/cancel", utils.RequireRole("admin", "manager"), controllers.CancelPlan)
			plans.GET("/:id/schedule", controllers.GetPlanSchedule)
			plans.GET("/:id/agreement.pdf", controllers.GetPlanAgreementPDF)
		}

		// Payment routes
		payments := api.Group("/payments")
		{
			payments.POST("", controllers.RecordPayment)
			payments.GET("", controllers.GetPayments)
			payments.GET("/:id", controllers.GetPayment)
			payments.DELETE("/:id", utils.RequireRole("admin"), controllers.DeletePayment)
			payments.GET("/:id/receipt.pdf", controllers.GetPaymentReceiptPDF)
		}

		// Reminder routes
		reminders := api.Group("/reminders")
		{
			reminders.GET("", controllers.GetReminders)
			reminders.POST("", controllers.CreateReminder)
			reminders.PUT("/:id/respond", controllers.RespondToReminder)
			reminders.POST("/run", utils.RequireRole("admin"), controllers.RunReminderSweep(reminderService))
		}

		// Expense routes
		expenses := api.Group("/expenses")
		{
			expenses.POST("/categories", utils.RequireRole("admin", "manager"), controllers.CreateExpenseCategory)
			expenses.GET("/categories", controllers.GetExpenseCategories)
			expenses.POST("", controllers.CreateExpense)
			expenses.GET("", controllers.GetExpenses)
			expenses.PUT("/:id", controllers.UpdateExpense)
			expenses.POST("/:id/approve", utils.RequireRole("admin", "manager"), controllers.TransitionExpense("approved"))
			expenses.POST("/:id/reject", utils.RequireRole("admin", "manager"), controllers.TransitionExpense("rejected"))
			expenses.POST("/:id/mark-paid", utils.RequireRole("admin", "manager", "accountant"), controllers.TransitionExpense("paid"))
			expenses.DELETE("/:id", controllers.DeleteExpense)
		}

		// Insurance routes
		insurance := api.Group("/insurance")
		{
			insurance.POST("", controllers.CreateInsurancePolicy)
			insurance.GET("", controllers.GetInsurancePolicies)
			insurance.GET("/expiring", controllers.GetExpiringPolicies)
			insurance.PUT("/:id", controllers.UpdateInsurancePolicy)
			insurance.DELETE("/:id", controllers.DeleteInsurancePolicy)
		}

		// Auction routes
		repossessions := api.Group("/repossessions")
		{
			repossessions.POST("", utils.RequireRole("admin", "manager"), controllers.CreateRepossession)
			repossessions.GET("", controllers.GetRepossessions)
			repossessions.GET("/:id", controllers.GetRepossession)
			repossessions.PUT("/:id", controllers.UpdateRepossession)
			repossessions.POST("/:id/recover", utils.RequireRole("admin", "manager"), controllers.MarkRepossessionRecovered)
			repossessions.POST("/:id/complete", utils.RequireRole("admin", "manager"), controllers.CompleteRepossession)
			repossessions.POST("/:id/cancel", utils.RequireRole("admin", "manager"), controllers.CancelRepossession)
		}

		auctions := api.Group("/auctions")
		{
			auctions.POST("", utils.RequireRole("admin", "manager"), controllers.CreateAuction)
			auctions.GET("", controllers.GetAuctions)
			auctions.GET("/:id", controllers.GetAuction)
			auctions.POST("/:id/start", utils.RequireRole("admin", "manager"), controllers.StartAuction)
			auctions.POST("/:id/bids", controllers.PlaceBid)
			auctions.POST("/:id/finalize", utils.RequireRole("admin", "manager"), controllers.FinalizeAuction)
			auctions.POST("/:id/cancel", utils.RequireRole("admin", "manager"), controllers.CancelAuction)
		}

		// Payroll routes
		payroll := api.Group("/payroll", utils.RequireRole("admin", "accountant"))
		{
			payroll.POST("/employees", controllers.CreateEmployee)
			payroll.GET("/employees", controllers.GetEmployees)
			payroll.PUT("/employees/:id", controllers.UpdateEmployee)
			payroll.POST("/run", controllers.RunPayroll)
			payroll.GET("/payslips", controllers.GetPayslips)
			payroll.POST("/payslips/:id/approve", controllers.TransitionPayslip("approved"))
			payroll.POST("/payslips/:id/mark-paid", controllers.TransitionPayslip("paid"))
		}

		// User management, admin only
		users := api.Group("/users", utils.RequireRole("admin"))
		{
			users.POST("", controllers.CreateUser)
			users.GET("", controllers.GetUsers)
			users.PUT("/:id", controllers.UpdateUser)
			users.DELETE("/:id", controllers.DeleteUser)
		}

		// Dealership profile
		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetDealershipProfile)
			profile.PUT("", utils.RequireRole("admin"), controllers.UpdateDealershipProfile)
		}

		// Settings routes
		settings := api.Group("/settings")
		{
			settings.GET("", controllers.GetSettings)
			settings.PUT("", utils.RequireRole("admin"), controllers.UpdateSettings)
		}

		// Audit log, admin only
		api.GET("/audit-logs", utils.RequireRole("admin"), controllers.GetAuditLogs)

		// Dashboard and reports
		api.GET("/dashboard", controllers.GetDashboardOverview)
		reportController := controllers.ReportController{}
		reports := api.Group("/reports")
		{
			reports.GET("/revenue", reportController.GetRevenueReport)
			reports.GET("/collections", reportController.GetCollectionsReport)
			reports.GET("/defaulters", reportController.GetDefaultersReport)
			reports.GET("/vehicle-sales", reportController.GetVehicleSalesReport)
		}

		// Reference rate
		api.GET("/rates/reference", controllers.GetReferenceRate(rateService))

		// CSV exports
		exports := api.Group("/exports")
		{
			exports.GET("/payments.csv", controllers.ExportPaymentsCSV)
			exports.GET("/schedules.csv", controllers.ExportSchedulesCSV)
			exports.GET("/clients.csv", controllers.ExportClientsCSV)
			exports.GET("/expenses.csv", controllers.ExportExpensesCSV)
			exports.GET("/payslips.csv", utils.RequireRole("admin", "accountant"), controllers.ExportPayslipsCSV)
		}
	}

	return r
}
