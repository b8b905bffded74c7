package models

import (
	"gorm.io/gorm"
)

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusRetired     VehicleStatus = "retired"
)

// Vehicle carries the per-company rate card. The rates are read-only within a
// quote or booking operation; a rate change never rewrites existing bookings.
type Vehicle struct {
	gorm.Model
	CompanyID   uint    `json:"companyId" gorm:"column:company_id;not null"`
	Name        string  `json:"name" gorm:"not null"`
	Category    string  `json:"category" gorm:"not null"`
	Capacity    int     `json:"capacity" gorm:"not null"`
	Luggage     int     `json:"luggage"`
	HourlyRate  float64 `json:"hourlyRate" gorm:"column:hourly_rate"`
	PerKmRate   float64 `json:"perKmRate" gorm:"column:per_km_rate"`
	AirportRate float64 `json:"airportRate" gorm:"column:airport_rate"`
	Status      string  `json:"status" gorm:"not null;default:'active'"`
	Image       string  `json:"image"`
}

// TableName specifies the table name
func (Vehicle) TableName() string {
	return "vehicles"
}

// RateFor returns the rate used for the given service type. Airport trips use
// the dedicated airport rate; hourly trips the hourly rate; everything else is
// billed per km.
func (v *Vehicle) RateFor(serviceType string) float64 {
	switch serviceType {
	case ServiceTypeHourly:
		return v.HourlyRate
	case ServiceTypeAirport:
		return v.AirportRate
	default:
		return v.PerKmRate
	}
}
