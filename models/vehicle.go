package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	VehicleAvailable   = "available"
	VehicleReserved    = "reserved"
	VehicleSold        = "sold"
	VehicleRepossessed = "repossessed"
	VehicleAuctioned   = "auctioned"
	VehicleMaintenance = "maintenance"
)

type Vehicle struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_dealership_vin,priority:1"`

	Make               string `gorm:"not null"`
	Model              string `gorm:"not null"`
	Year               int    `gorm:"not null"`
	VIN                string `gorm:"not null;uniqueIndex:idx_dealership_vin,priority:2"`
	RegistrationNumber string
	Color              string
	Mileage            int
	FuelType           string `gorm:"type:varchar(20)"` // petrol, diesel, hybrid, electric
	Transmission       string `gorm:"type:varchar(20)"` // manual, automatic

	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MinimumPrice  decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	Status      string `gorm:"type:varchar(20);not null;default:'available';index"`
	IsFeatured  bool   `gorm:"default:false"`
	Description string

	History []VehicleHistory `gorm:"foreignKey:VehicleID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func ValidVehicleStatus(s string) bool {
	switch s {
	case VehicleAvailable, VehicleReserved, VehicleSold,
		VehicleRepossessed, VehicleAuctioned, VehicleMaintenance:
		return true
	}
	return false
}

// VehicleHistory records every status transition for a vehicle.
type VehicleHistory struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index"`
	VehicleID    uuid.UUID `gorm:"type:uuid;not null;index"`

	OldStatus     string    `gorm:"type:varchar(20)"`
	NewStatus     string    `gorm:"type:varchar(20);not null"`
	ChangedByID   uuid.UUID `gorm:"type:uuid"`
	ChangedByName string
	Notes         string

	CreatedAt time.Time
}
