// services/repossessions.go
package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dealerpro-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const repossessionPrefix = "REPO"

// FormatRepossessionNumber renders REPO-YYYY-NNNN.
func FormatRepossessionNumber(year int, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", repossessionPrefix, year, seq)
}

func nextRepossessionSeq(lastNumber string) int {
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

// NextRepossessionNumber issues the next per-tenant yearly case number.
func NextRepossessionNumber(tx *gorm.DB, dealershipID uuid.UUID, initiated time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", repossessionPrefix, initiated.Year())

	var last models.Repossession
	err := tx.Scopes(models.ForDealership(dealershipID)).
		Where("repossession_number LIKE ?", prefix+"%").
		Order("length(repossession_number) DESC, repossession_number DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FormatRepossessionNumber(initiated.Year(), 1), nil
	}
	if err != nil {
		return "", fmt.Errorf("last repossession number: %w", err)
	}
	return FormatRepossessionNumber(initiated.Year(), nextRepossessionSeq(last.RepossessionNumber)), nil
}

// ValidRepossessionTransition enforces the case lifecycle: notice and
// recovery move forward only, closed cases stay closed.
func ValidRepossessionTransition(from, to string) bool {
	switch from {
	case models.RepoPending:
		return to == models.RepoNoticeSent || to == models.RepoInProgress || to == models.RepoCancelled
	case models.RepoNoticeSent:
		return to == models.RepoInProgress || to == models.RepoCancelled
	case models.RepoInProgress:
		return to == models.RepoRecovered || to == models.RepoCancelled
	case models.RepoRecovered:
		return to == models.RepoCompleted || to == models.RepoCancelled
	}
	return false
}
