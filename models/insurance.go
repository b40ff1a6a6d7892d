package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PolicyComprehensive = "comprehensive"
	PolicyThirdParty    = "third_party"
	PolicyTheft         = "theft"
	PolicyFire          = "fire"
)

const (
	PolicyActive    = "active"
	PolicyExpired   = "expired"
	PolicyCancelled = "cancelled"
)

type InsurancePolicy struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_dealership_policy,priority:1"`

	VehicleID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Provider     string    `gorm:"not null"`
	PolicyNumber string    `gorm:"not null;uniqueIndex:idx_dealership_policy,priority:2"`
	PolicyType   string    `gorm:"type:varchar(20);not null;default:'comprehensive'"`

	StartDate time.Time       `gorm:"not null"`
	EndDate   time.Time       `gorm:"not null;index"`
	Premium   decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Status string `gorm:"type:varchar(10);not null;default:'active';index"`
	Notes  string

	Vehicle Vehicle `gorm:"foreignKey:VehicleID"`

	gorm.Model
}

func (p *InsurancePolicy) DaysToExpiry(today time.Time) int {
	return int(p.EndDate.Sub(beginningOfDay(today)).Hours() / 24)
}

func ValidPolicyType(t string) bool {
	switch t {
	case PolicyComprehensive, PolicyThirdParty, PolicyTheft, PolicyFire:
		return true
	}
	return false
}
