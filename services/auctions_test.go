package services

import (
	"testing"
	"time"

	"dealerpro-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveAuction(starting, reserve string, bids ...string) *models.Auction {
	a := &models.Auction{
		Status:       models.AuctionActive,
		StartTime:    time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2025, 7, 1, 17, 0, 0, 0, time.UTC),
		StartingBid:  decimal.RequireFromString(starting),
		ReservePrice: decimal.RequireFromString(reserve),
	}
	for _, b := range bids {
		a.Bids = append(a.Bids, models.Bid{Amount: decimal.RequireFromString(b)})
	}
	return a
}

func TestFormatAuctionNumber(t *testing.T) {
	month := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "AUC-202507-001", FormatAuctionNumber(month, 1))
	assert.Equal(t, "AUC-202507-023", FormatAuctionNumber(month, 23))

	assert.Equal(t, 2, nextAuctionSeq("AUC-202507-001"))
	assert.Equal(t, 1, nextAuctionSeq("nonsense"))
}

func TestValidateBid(t *testing.T) {
	noon := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		auction *models.Auction
		amount  string
		now     time.Time
		wantErr string
	}{
		{"first bid meets starting", liveAuction("50000", "60000"), "50000", noon, ""},
		{"first bid below starting", liveAuction("50000", "60000"), "49999.99", noon,
			"meet the starting bid"},
		{"must exceed highest", liveAuction("50000", "60000", "52000"), "52000", noon,
			"exceed the current highest"},
		{"outbid", liveAuction("50000", "60000", "52000"), "52000.01", noon, ""},
		{"zero amount", liveAuction("50000", "60000"), "0", noon, "greater than zero"},
		{"before window", liveAuction("50000", "60000"), "50000",
			time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC), "bidding window"},
		{"after window", liveAuction("50000", "60000"), "50000",
			time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC), "bidding window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBid(tt.auction, decimal.RequireFromString(tt.amount), tt.now)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	scheduled := liveAuction("50000", "60000")
	scheduled.Status = models.AuctionScheduled
	err := ValidateBid(scheduled, decimal.NewFromInt(50000), noon)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not active")
}

func TestFinalizeOutcome(t *testing.T) {
	// highest meets reserve: sold
	won := liveAuction("50000", "60000", "55000", "61000", "58000")
	bid, status := FinalizeOutcome(won)
	require.NotNil(t, bid)
	assert.True(t, bid.Amount.Equal(decimal.NewFromInt(61000)))
	assert.Equal(t, models.AuctionCompleted, status)

	// highest under reserve: cancelled
	under := liveAuction("50000", "60000", "55000", "59999")
	bid, status = FinalizeOutcome(under)
	assert.Nil(t, bid)
	assert.Equal(t, models.AuctionCancelled, status)

	// no bids at all
	empty := liveAuction("50000", "0")
	bid, status = FinalizeOutcome(empty)
	assert.Nil(t, bid)
	assert.Equal(t, models.AuctionCancelled, status)
}
