package models

import (
	"time"

	"dealerpro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSales      = "sales"
	RoleAccountant = "accountant"
	RoleStaff      = "staff"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_dealership_user_email,priority:1"`

	Email    string `gorm:"not null;uniqueIndex:idx_dealership_user_email,priority:2"`
	Password string `gorm:"not null"`
	Name     string `gorm:"not null"`
	Phone    string

	Role string `gorm:"type:varchar(20);not null;default:'staff'"`

	Dealership Dealership `gorm:"foreignKey:DealershipID"`

	LastLogin *time.Time
	IsActive  bool `gorm:"default:true"`

	gorm.Model
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleSales, RoleAccountant, RoleStaff:
		return true
	}
	return false
}
