package models

import (
	"time"

	"github.com/google/uuid"
)

type Dealership struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"not null"`
	Code string    `gorm:"uniqueIndex;not null"` // lowercase slug, used in access URLs

	Email   string `gorm:"not null"`
	Phone   string
	Address string

	Currency       string `gorm:"type:varchar(3);default:'KES'"`
	PrimaryColor   string `gorm:"type:varchar(7);default:'#1a1a2e'"`
	SecondaryColor string `gorm:"type:varchar(7);default:'#16213e'"`

	OnTrial   bool `gorm:"default:true"`
	PaidUntil *time.Time
	IsActive  bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Users    []User    `gorm:"foreignKey:DealershipID"`
	Vehicles []Vehicle `gorm:"foreignKey:DealershipID"`
	Clients  []Client  `gorm:"foreignKey:DealershipID"`
}
