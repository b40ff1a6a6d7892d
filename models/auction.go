package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	AuctionScheduled = "scheduled"
	AuctionActive    = "active"
	AuctionCompleted = "completed"
	AuctionCancelled = "cancelled"
)

type Auction struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DealershipID uuid.UUID `gorm:"type:uuid;not null;index"`

	VehicleID     uuid.UUID `gorm:"type:uuid;not null;index"`
	AuctionNumber string    `gorm:"not null;uniqueIndex"`

	StartTime    time.Time       `gorm:"not null"`
	EndTime      time.Time       `gorm:"not null"`
	StartingBid  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ReservePrice decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	Status       string     `gorm:"type:varchar(10);not null;default:'scheduled';index"`
	WinningBidID *uuid.UUID `gorm:"type:uuid"`
	Notes        string

	Vehicle Vehicle `gorm:"foreignKey:VehicleID"`
	Bids    []Bid   `gorm:"foreignKey:AuctionID"`

	gorm.Model
}

// HighestBid returns the top bid from the preloaded bids, or nil.
func (a *Auction) HighestBid() *Bid {
	var top *Bid
	for i := range a.Bids {
		if top == nil || a.Bids[i].Amount.GreaterThan(top.Amount) {
			top = &a.Bids[i]
		}
	}
	return top
}

type Bid struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	AuctionID uuid.UUID `gorm:"type:uuid;not null;index"`

	BidderName  string          `gorm:"not null"`
	BidderPhone string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsWinning   bool            `gorm:"default:false"`

	CreatedAt time.Time
}
