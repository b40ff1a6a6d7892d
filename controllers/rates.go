// controllers/rates.go
package controllers

import (
	"net/http"

	"dealerpro-backend/config"
	"dealerpro-backend/models"
	"dealerpro-backend/services"
	"dealerpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetReferenceRate returns the central-bank base rate with the bank margin
// applied, for use as the suggested financing rate. Falls back on the
// dealership's configured default when the feed is unreachable.
func GetReferenceRate(rateService *services.RateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dealershipID, err := utils.GetDealershipID(c)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "Dealership not found in context")
			return
		}

		base, err := rateService.FetchBaseRate(c.Request.Context())
		if err != nil {
			logrus.WithError(err).Warn("reference rate unavailable")

			var settings models.SystemSettings
			if dbErr := config.DB.Where("dealership_id = ?", dealershipID).
				First(&settings).Error; dbErr == nil {
				c.JSON(http.StatusOK, gin.H{
					"source":        "settings",
					"suggestedRate": settings.DefaultInterestRate,
				})
				return
			}

			utils.RespondWithError(c, http.StatusServiceUnavailable, "Reference rate unavailable")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"source":        "central_bank",
			"baseRate":      base,
			"margin":        rateService.Margin(),
			"suggestedRate": base.Add(rateService.Margin()),
		})
	}
}
