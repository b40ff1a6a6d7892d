package main

import (
	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/routes"
	"dealerpro-backend/services"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}
	config.InitLogger()
	config.ConnectDB()

	if err := config.DB.AutoMigrate(
		&models.Dealership{},
		&models.User{},
		&models.SystemSettings{},
		&models.Vehicle{},
		&models.VehicleHistory{},
		&models.Client{},
		&models.Purchase{},
		&models.InstallmentPlan{},
		&models.PaymentSchedule{},
		&models.Payment{},
		&models.PaymentReminder{},
		&models.AuditLog{},
		&models.ExpenseCategory{},
		&models.Expense{},
		&models.InsurancePolicy{},
		&models.Repossession{},
		&models.Auction{},
		&models.Bid{},
		&models.Employee{},
		&models.Payslip{},
	); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}
}

func main() {
	reminderService := services.NewReminderService(config.DB)
	reminderService.StartScheduler()

	rateService := services.NewRateService()

	r := routes.SetupRouter(reminderService, rateService)

	port := config.GetEnv("PORT", "8080")
	logrus.WithField("port", port).Info("starting server")
	if err := r.Run(":" + port); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
