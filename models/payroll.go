package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PayslipDraft    = "draft"
	PayslipApproved = "approved"
	PayslipPaid     = "paid"
)

type Employee struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_dealership_employee,priority:1"`

	FirstName  string `gorm:"not null"`
	LastName   string `gorm:"not null"`
	NationalID string `gorm:"not null;uniqueIndex:idx_dealership_employee,priority:2"`
	Phone      string
	Email      string

	Position   string
	Department string
	HireDate   time.Time

	BasicSalary decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Allowances  decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	IsActive bool `gorm:"default:true"`

	gorm.Model
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Payslip is one employee's pay for one month. Month is stored as the first
// day of the month.
type Payslip struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index"`

	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_employee_month,priority:1"`
	Month      time.Time `gorm:"not null;uniqueIndex:idx_employee_month,priority:2"`

	BasicSalary decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Allowances  decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Deductions  decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	GrossPay    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NetPay      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Status        string    `gorm:"type:varchar(10);not null;default:'draft'"`
	GeneratedByID uuid.UUID `gorm:"type:uuid"`

	Employee Employee `gorm:"foreignKey:EmployeeID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
