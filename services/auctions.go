// services/auctions.go
package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dealerpro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const auctionPrefix = "AUC"

// FormatAuctionNumber renders AUC-YYYYMM-NNN.
func FormatAuctionNumber(month time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", auctionPrefix, month.Format("200601"), seq)
}

func nextAuctionSeq(lastNumber string) int {
	parts := strings.Split(lastNumber, "-")
	if len(parts) != 3 {
		return 1
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return 1
	}
	return n + 1
}

// NextAuctionNumber issues the next per-tenant monthly auction number.
func NextAuctionNumber(tx *gorm.DB, dealershipID uuid.UUID, month time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", auctionPrefix, month.Format("200601"))

	var last models.Auction
	err := tx.Scopes(models.ForDealership(dealershipID)).
		Where("auction_number LIKE ?", prefix+"%").
		Order("length(auction_number) DESC, auction_number DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FormatAuctionNumber(month, 1), nil
	}
	if err != nil {
		return "", fmt.Errorf("last auction number: %w", err)
	}
	return FormatAuctionNumber(month, nextAuctionSeq(last.AuctionNumber)), nil
}

// ValidateBid enforces the bidding rules: the auction must be running and
// within its window, and each bid must beat the current highest (or meet
// the starting bid on the first one).
func ValidateBid(auction *models.Auction, amount decimal.Decimal, now time.Time) error {
	if auction.Status != models.AuctionActive {
		return validationErrorf("auction is not active")
	}
	if now.Before(auction.StartTime) || now.After(auction.EndTime) {
		return validationErrorf("auction is outside its bidding window")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return validationErrorf("bid must be greater than zero")
	}

	highest := auction.HighestBid()
	if highest == nil {
		if amount.LessThan(auction.StartingBid) {
			return validationErrorf("bid must meet the starting bid of %s",
				auction.StartingBid.StringFixed(2))
		}
		return nil
	}
	if amount.LessThanOrEqual(highest.Amount) {
		return validationErrorf("bid must exceed the current highest of %s",
			highest.Amount.StringFixed(2))
	}
	return nil
}

// FinalizeOutcome decides how an auction ends: the highest bid wins when it
// meets the reserve, otherwise the auction is cancelled. Returns the
// winning bid (nil when cancelled) and the resulting status.
func FinalizeOutcome(auction *models.Auction) (*models.Bid, string) {
	highest := auction.HighestBid()
	if highest == nil || highest.Amount.LessThan(auction.ReservePrice) {
		return nil, models.AuctionCancelled
	}
	return highest, models.AuctionCompleted
}
