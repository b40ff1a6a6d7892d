// services/reminders.go
package services

import (
	"fmt"
	"os"
	"time"

	"dealerpro-backend/models"
	"dealerpro-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
	mailer *Mailer
}

func NewReminderService(db *gorm.DB) *ReminderService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		mailer: NewMailer(),
	}
}

// StartScheduler registers the daily sweeps and starts the cron loop.
func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Payment reminders and overdue handling, daily at 8 AM
	c.AddFunc("0 8 * * *", s.RunDailySweep)
	// Insurance expiry checks, daily at 9 AM
	c.AddFunc("0 9 * * *", s.RunInsuranceSweep)

	c.Start()
	logrus.Info("reminder scheduler started")
}

// RunDailySweep processes every active dealership: creates reminders for
// upcoming installments, delivers what is pending, and flags defaulters.
func (s *ReminderService) RunDailySweep() {
	logrus.Info("daily reminder sweep started")

	dealerships, err := s.activeDealerships()
	if err != nil {
		logrus.WithError(err).Error("failed to fetch dealerships")
		return
	}

	for i := range dealerships {
		s.ProcessDealership(&dealerships[i])
	}

	logrus.Info("daily reminder sweep completed")
}

// ProcessDealership runs one tenant's sweep. Each step logs its own
// failures and carries on: one broken row never aborts the sweep.
func (s *ReminderService) ProcessDealership(dealership *models.Dealership) {
	settings, err := s.settingsFor(dealership.ID)
	if err != nil {
		logrus.WithError(err).WithField("dealership", dealership.ID).
			Error("failed to load settings")
		return
	}

	s.createUpcomingReminders(dealership, settings)
	s.deliverPending(dealership, settings)
	s.markDefaulters(dealership)
}

func (s *ReminderService) activeDealerships() ([]models.Dealership, error) {
	var dealerships []models.Dealership
	err := s.db.Find(&dealerships, "is_active = ?", true).Error
	return dealerships, err
}

func (s *ReminderService) settingsFor(dealershipID uuid.UUID) (*models.SystemSettings, error) {
	var settings models.SystemSettings
	if err := s.db.Where("dealership_id = ?", dealershipID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// createUpcomingReminders makes a pending reminder for every unpaid row
// falling due in exactly the configured number of days, at most once per
// row per day.
func (s *ReminderService) createUpcomingReminders(dealership *models.Dealership, settings *models.SystemSettings) {
	today := utils.BeginningOfDay(time.Now())
	target := today.AddDate(0, 0, settings.PaymentReminderDays)

	var rows []models.PaymentSchedule
	err := s.db.Raw(`
		SELECT ps.* FROM payment_schedules ps
		JOIN installment_plans ip ON ip.id = ps.plan_id
		WHERE ps.dealership_id = ?
		AND ps.is_paid = false
		AND ip.status = ?
		AND ip.deleted_at IS NULL
		AND ps.due_date >= ? AND ps.due_date < ?
	`, dealership.ID, models.PlanActive, target, target.AddDate(0, 0, 1)).Scan(&rows).Error
	if err != nil {
		logrus.WithError(err).WithField("dealership", dealership.ID).
			Error("failed to query upcoming installments")
		return
	}

	for i := range rows {
		row := &rows[i]

		var existing int64
		if err := s.db.Model(&models.PaymentReminder{}).
			Where("schedule_id = ? AND created_at >= ? AND created_at < ?",
				row.ID, today, today.AddDate(0, 0, 1)).
			Count(&existing).Error; err != nil {
			logrus.WithError(err).Warn("failed to check existing reminders")
			continue
		}
		if existing > 0 {
			continue
		}

		client, err := s.clientForRow(row)
		if err != nil {
			logrus.WithError(err).WithField("schedule", row.ID).
				Warn("failed to resolve client for reminder")
			continue
		}

		reminderType := models.ReminderSMS
		if client.Phone == "" && client.Email != "" {
			reminderType = models.ReminderEmail
		}

		message := fmt.Sprintf(
			"Dear %s, installment #%d of %s %s is due on %s. Kindly make your payment on time.",
			client.FullName(), row.InstallmentNumber, settings.Currency,
			row.AmountDue.StringFixed(2), row.DueDate.Format("02 Jan 2006"))

		reminder := models.PaymentReminder{
			ID:            uuid.New(),
			DealershipID:  dealership.ID,
			ClientID:      client.ID,
			ScheduleID:    &row.ID,
			ReminderType:  reminderType,
			Status:        models.ReminderPending,
			Message:       message,
			ScheduledDate: today,
		}
		if err := s.db.Create(&reminder).Error; err != nil {
			logrus.WithError(err).WithField("schedule", row.ID).
				Warn("failed to create reminder")
		}
	}
}

func (s *ReminderService) clientForRow(row *models.PaymentSchedule) (*models.Client, error) {
	var plan models.InstallmentPlan
	if err := s.db.Preload("Purchase.Client").First(&plan, "id = ?", row.PlanID).Error; err != nil {
		return nil, err
	}
	return &plan.Purchase.Client, nil
}

// deliverPending sends today's pending SMS and email reminders. Call and
// letter reminders stay pending for manual handling.
func (s *ReminderService) deliverPending(dealership *models.Dealership, settings *models.SystemSettings) {
	today := utils.BeginningOfDay(time.Now())

	var reminders []models.PaymentReminder
	err := s.db.Preload("Client").
		Scopes(models.ForDealership(dealership.ID)).
		Where("status = ? AND scheduled_date <= ?", models.ReminderPending, today).
		Find(&reminders).Error
	if err != nil {
		logrus.WithError(err).WithField("dealership", dealership.ID).
			Error("failed to load pending reminders")
		return
	}

	for i := range reminders {
		reminder := &reminders[i]

		var sendErr error
		switch reminder.ReminderType {
		case models.ReminderSMS:
			if !settings.SMSEnabled {
				continue
			}
			sendErr = s.sendSMS(reminder.Client.Phone, reminder.Message)
		case models.ReminderEmail:
			if !settings.EmailEnabled || reminder.Client.Email == "" {
				continue
			}
			sendErr = s.mailer.Send(reminder.Client.Email, "Payment reminder", reminder.Message)
		default:
			continue
		}

		now := time.Now()
		if sendErr != nil {
			reminder.Status = models.ReminderFailed
			reminder.ErrorMessage = sendErr.Error()
			logrus.WithError(sendErr).WithField("reminder", reminder.ID).
				Warn("reminder delivery failed")
		} else {
			reminder.Status = models.ReminderSent
			reminder.SentDate = &now
		}

		if err := s.db.Save(reminder).Error; err != nil {
			logrus.WithError(err).WithField("reminder", reminder.ID).
				Warn("failed to update reminder status")
		}
	}
}

func (s *ReminderService) sendSMS(to, body string) error {
	if to == "" {
		return fmt.Errorf("client has no phone number")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(os.Getenv("TWILIO_FROM"))
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.Sid != nil {
		logrus.WithField("sid", *resp.Sid).Debug("sms sent")
	}
	return nil
}

// defaultThreshold is how many overdue installments a client can carry
// before being flagged.
const defaultThreshold = 2

// markDefaulters flags plans and clients with more than defaultThreshold
// overdue installments.
func (s *ReminderService) markDefaulters(dealership *models.Dealership) {
	today := time.Now()

	var plans []models.InstallmentPlan
	err := s.db.Preload("Schedule").Preload("Purchase").
		Scopes(models.ForDealership(dealership.ID)).
		Where("status = ?", models.PlanActive).
		Find(&plans).Error
	if err != nil {
		logrus.WithError(err).WithField("dealership", dealership.ID).
			Error("failed to load active plans")
		return
	}

	for i := range plans {
		plan := &plans[i]
		overdue := plan.OverdueCount(today)
		if overdue <= defaultThreshold {
			continue
		}

		if err := s.db.Model(plan).Update("status", models.PlanDefaulted).Error; err != nil {
			logrus.WithError(err).WithField("plan", plan.ID).
				Warn("failed to mark plan defaulted")
			continue
		}
		if err := s.db.Model(&models.Client{}).
			Where("id = ? AND status = ?", plan.Purchase.ClientID, models.ClientActive).
			Update("status", models.ClientDefaulted).Error; err != nil {
			logrus.WithError(err).WithField("client", plan.Purchase.ClientID).
				Warn("failed to mark client defaulted")
			continue
		}

		logrus.WithFields(logrus.Fields{
			"dealership": dealership.ID,
			"plan":       plan.ID,
			"client":     plan.Purchase.ClientID,
			"overdue":    overdue,
		}).Info("plan marked defaulted")
	}
}

// RunInsuranceSweep expires lapsed policies and warns about ones about to.
func (s *ReminderService) RunInsuranceSweep() {
	logrus.Info("insurance sweep started")

	dealerships, err := s.activeDealerships()
	if err != nil {
		logrus.WithError(err).Error("failed to fetch dealerships")
		return
	}

	today := utils.BeginningOfDay(time.Now())
	for i := range dealerships {
		dealership := &dealerships[i]

		if err := s.db.Model(&models.InsurancePolicy{}).
			Scopes(models.ForDealership(dealership.ID)).
			Where("status = ? AND end_date < ?", models.PolicyActive, today).
			Update("status", models.PolicyExpired).Error; err != nil {
			logrus.WithError(err).Warn("failed to expire policies")
		}

		var expiring []models.InsurancePolicy
		err := s.db.Preload("Vehicle").
			Scopes(models.ForDealership(dealership.ID)).
			Where("status = ? AND end_date >= ? AND end_date < ?",
				models.PolicyActive, today, today.AddDate(0, 0, 14)).
			Find(&expiring).Error
		if err != nil {
			logrus.WithError(err).Warn("failed to load expiring policies")
			continue
		}

		for j := range expiring {
			policy := &expiring[j]
			days := policy.DaysToExpiry(today)

			logrus.WithFields(logrus.Fields{
				"dealership": dealership.ID,
				"policy":     policy.PolicyNumber,
				"days":       days,
			}).Info("insurance policy expiring")

			if s.mailer.Configured() && dealership.Email != "" {
				vehicle := fmt.Sprintf("%s %s (%s)",
					policy.Vehicle.Make, policy.Vehicle.Model, policy.Vehicle.RegistrationNumber)
				if err := s.mailer.SendInsuranceExpiry(dealership.Email, vehicle,
					policy.PolicyNumber, policy.Provider, policy.EndDate, days); err != nil {
					logrus.WithError(err).Warn("failed to send expiry notice")
				}
			}
		}
	}

	logrus.Info("insurance sweep completed")
}
