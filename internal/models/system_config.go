package models

import (
	"gorm.io/gorm"
)

// SystemConfig holds the per-company pricing knobs consumed by the price
// calculator and the payment authorization flow.
type SystemConfig struct {
	gorm.Model
	CompanyID          uint    `json:"companyId" gorm:"column:company_id;not null;uniqueIndex"`
	TaxRate            float64 `json:"taxRate" gorm:"column:tax_rate"`
	BasePriceFlat      float64 `json:"basePriceFlat" gorm:"column:base_price_flat"`
	CancellationFee    float64 `json:"cancellationFee" gorm:"column:cancellation_fee"`
	SurgeRate          float64 `json:"surgeRate" gorm:"column:surge_rate"`
	RateBuffer         float64 `json:"rateBuffer" gorm:"column:rate_buffer"`
	GratuityPercentage float64 `json:"gratuityPercentage" gorm:"column:gratuity_percentage"`
	WaitTimeRate       float64 `json:"waitTimeRate" gorm:"column:wait_time_rate"`
	Currency           string  `json:"currency" gorm:"size:10;default:'usd'"`
}

// TableName specifies the table name
func (SystemConfig) TableName() string {
	return "system_configs"
}
