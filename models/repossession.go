package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RepoPending    = "pending"
	RepoNoticeSent = "notice_sent"
	RepoInProgress = "in_progress"
	RepoRecovered  = "recovered"
	RepoCompleted  = "completed"
	RepoCancelled  = "cancelled"
)

const (
	RepoReasonDefault        = "payment_default"
	RepoReasonBreach         = "breach_of_contract"
	RepoReasonInsuranceLapse = "insurance_lapse"
	RepoReasonUnauthorized   = "unauthorized_use"
	RepoReasonOther          = "other"
)

const (
	RepoResolvedPaidInFull = "paid_in_full"
	RepoResolvedAuctioned  = "auctioned"
	RepoResolvedReturned   = "returned"
	RepoResolvedWrittenOff = "written_off"
	RepoResolvedOther      = "other"
)

// Repossession tracks recovering a vehicle from a defaulted client, from
// notice through recovery to resolution. The vehicle only changes status
// once it is actually recovered.
type Repossession struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index"`

	RepossessionNumber string `gorm:"not null;uniqueIndex"`

	VehicleID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;index"`
	PurchaseID uuid.UUID `gorm:"type:uuid;not null;index"`

	Reason string `gorm:"type:varchar(30);not null"`
	Status string `gorm:"type:varchar(20);not null;default:'pending';index"`

	OutstandingAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentsMissed    int             `gorm:"default:0"`

	InitiatedDate  time.Time `gorm:"not null"`
	NoticeSentDate *time.Time
	RecoveryDate   *time.Time
	CompletionDate *time.Time

	AssignedToID   *uuid.UUID `gorm:"type:uuid"`
	AssignedToName string

	RecoveryCost decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	StorageCost  decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	LegalCost    decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	ResolutionType  string `gorm:"type:varchar(20)"`
	ResolutionNotes string
	Notes           string

	CreatedByID uuid.UUID `gorm:"type:uuid"`

	Vehicle Vehicle `gorm:"foreignKey:VehicleID"`
	Client  Client  `gorm:"foreignKey:ClientID"`

	gorm.Model
}

// TotalCost sums the costs incurred during recovery.
func (r *Repossession) TotalCost() decimal.Decimal {
	return r.RecoveryCost.Add(r.StorageCost).Add(r.LegalCost)
}

// TotalAmountDue is the outstanding balance plus recovery costs.
func (r *Repossession) TotalAmountDue() decimal.Decimal {
	return r.OutstandingAmount.Add(r.TotalCost())
}

// DaysInProcess counts days from initiation to completion, or to today for
// an open case.
func (r *Repossession) DaysInProcess(today time.Time) int {
	end := today
	if r.CompletionDate != nil {
		end = *r.CompletionDate
	}
	days := int(beginningOfDay(end).Sub(beginningOfDay(r.InitiatedDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (r *Repossession) IsClosed() bool {
	return r.Status == RepoCompleted || r.Status == RepoCancelled
}

func ValidRepossessionReason(s string) bool {
	switch s {
	case RepoReasonDefault, RepoReasonBreach, RepoReasonInsuranceLapse,
		RepoReasonUnauthorized, RepoReasonOther:
		return true
	}
	return false
}

func ValidRepossessionResolution(s string) bool {
	switch s {
	case RepoResolvedPaidInFull, RepoResolvedAuctioned, RepoResolvedReturned,
		RepoResolvedWrittenOff, RepoResolvedOther:
		return true
	}
	return false
}
