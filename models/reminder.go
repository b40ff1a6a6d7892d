package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReminderSMS    = "sms"
	ReminderEmail  = "email"
	ReminderCall   = "call"
	ReminderLetter = "letter"
)

const (
	ReminderPending   = "pending"
	ReminderSent      = "sent"
	ReminderFailed    = "failed"
	ReminderResponded = "responded"
)

type PaymentReminder struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index"`

	ClientID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ScheduleID *uuid.UUID `gorm:"type:uuid;index"`

	ReminderType string `gorm:"type:varchar(10);not null;default:'sms'"`
	Status       string `gorm:"type:varchar(10);not null;default:'pending';index"`

	Message       string    `gorm:"not null"`
	ScheduledDate time.Time `gorm:"not null;index"`
	SentDate      *time.Time
	ResponseNotes string
	ErrorMessage  string

	CreatedByID *uuid.UUID `gorm:"type:uuid"` // nil when created by the daily sweep

	Client   Client           `gorm:"foreignKey:ClientID"`
	Schedule *PaymentSchedule `gorm:"foreignKey:ScheduleID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidReminderType(t string) bool {
	switch t {
	case ReminderSMS, ReminderEmail, ReminderCall, ReminderLetter:
		return true
	}
	return false
}
