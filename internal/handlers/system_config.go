package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ridewellhq/chauffeur-backend/internal/middleware"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"github.com/ridewellhq/chauffeur-backend/internal/services"
	"gorm.io/gorm"
)

type SystemConfigInput struct {
	TaxRate            *float64 `json:"taxRate"`
	BasePriceFlat      *float64 `json:"basePriceFlat"`
	CancellationFee    *float64 `json:"cancellationFee"`
	SurgeRate          *float64 `json:"surgeRate"`
	RateBuffer         *float64 `json:"rateBuffer"`
	GratuityPercentage *float64 `json:"gratuityPercentage"`
	WaitTimeRate       *float64 `json:"waitTimeRate"`
	Currency           *string  `json:"currency"`
}

// GetSystemConfig returns the company's pricing knobs.
func GetSystemConfig(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)

		config, err := services.GetSystemConfig(c.Request.Context(), db, actor.CompanyID)
		if err != nil {
			c.JSON(404, gin.H{"error": "System config not found"})
			return
		}

		c.JSON(200, gin.H{"config": config})
	}
}

// UpdateSystemConfig changes pricing knobs. Only future quotes and
// recomputes see the new values; persisted booking snapshots are untouched.
func UpdateSystemConfig(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)

		var config models.SystemConfig
		if err := db.Where("company_id = ?", actor.CompanyID).First(&config).Error; err != nil {
			c.JSON(404, gin.H{"error": "System config not found"})
			return
		}

		var input SystemConfigInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.TaxRate != nil {
			config.TaxRate = *input.TaxRate
		}
		if input.BasePriceFlat != nil {
			config.BasePriceFlat = *input.BasePriceFlat
		}
		if input.CancellationFee != nil {
			config.CancellationFee = *input.CancellationFee
		}
		if input.SurgeRate != nil {
			config.SurgeRate = *input.SurgeRate
		}
		if input.RateBuffer != nil {
			config.RateBuffer = *input.RateBuffer
		}
		if input.GratuityPercentage != nil {
			config.GratuityPercentage = *input.GratuityPercentage
		}
		if input.WaitTimeRate != nil {
			config.WaitTimeRate = *input.WaitTimeRate
		}
		if input.Currency != nil {
			config.Currency = *input.Currency
		}

		if err := db.Save(&config).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update system config"})
			return
		}

		services.InvalidateSystemConfig(c.Request.Context(), actor.CompanyID)

		c.JSON(200, gin.H{
			"message": "System config updated successfully",
			"config":  config,
		})
	}
}
