package services

import (
	"testing"
	"time"

	"dealerpro-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatRepossessionNumber(t *testing.T) {
	assert.Equal(t, "REPO-2025-0001", FormatRepossessionNumber(2025, 1))
	assert.Equal(t, "REPO-2025-0137", FormatRepossessionNumber(2025, 137))
	assert.Equal(t, "REPO-2025-10001", FormatRepossessionNumber(2025, 10001))

	assert.Equal(t, 2, nextRepossessionSeq("REPO-2025-0001"))
	assert.Equal(t, 10001, nextRepossessionSeq("REPO-2025-10000"))
	assert.Equal(t, 1, nextRepossessionSeq("nonsense"))
}

func TestValidRepossessionTransition(t *testing.T) {
	allowed := [][2]string{
		{models.RepoPending, models.RepoNoticeSent},
		{models.RepoPending, models.RepoInProgress},
		{models.RepoPending, models.RepoCancelled},
		{models.RepoNoticeSent, models.RepoInProgress},
		{models.RepoNoticeSent, models.RepoCancelled},
		{models.RepoInProgress, models.RepoRecovered},
		{models.RepoInProgress, models.RepoCancelled},
		{models.RepoRecovered, models.RepoCompleted},
		{models.RepoRecovered, models.RepoCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, ValidRepossessionTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	refused := [][2]string{
		{models.RepoPending, models.RepoCompleted},
		{models.RepoNoticeSent, models.RepoRecovered},
		{models.RepoRecovered, models.RepoInProgress},
		{models.RepoCompleted, models.RepoCancelled},
		{models.RepoCancelled, models.RepoPending},
	}
	for _, tr := range refused {
		assert.False(t, ValidRepossessionTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestRepossessionAmounts(t *testing.T) {
	repo := &models.Repossession{
		OutstandingAmount: decimal.NewFromInt(250000),
		RecoveryCost:      decimal.NewFromInt(15000),
		StorageCost:       decimal.NewFromInt(4500),
		LegalCost:         decimal.NewFromInt(8000),
	}

	assert.True(t, repo.TotalCost().Equal(decimal.NewFromInt(27500)))
	assert.True(t, repo.TotalAmountDue().Equal(decimal.NewFromInt(277500)))
}

func TestRepossessionDaysInProcess(t *testing.T) {
	initiated := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 21, 16, 0, 0, 0, time.UTC)

	open := &models.Repossession{InitiatedDate: initiated, Status: models.RepoInProgress}
	assert.Equal(t, 20, open.DaysInProcess(today))
	assert.False(t, open.IsClosed())

	completion := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	closed := &models.Repossession{
		InitiatedDate:  initiated,
		CompletionDate: &completion,
		Status:         models.RepoCompleted,
	}
	assert.Equal(t, 10, closed.DaysInProcess(today))
	assert.True(t, closed.IsClosed())
}
