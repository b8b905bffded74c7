package models

import (
	"gorm.io/gorm"
)

// Company is the tenant boundary. Every vehicle, booking and pricing config
// belongs to exactly one company.
type Company struct {
	gorm.Model
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	OwnerName    string `json:"ownerName"`
	PlatformName string `json:"platformName"`
}

// TableName specifies the table name
func (Company) TableName() string {
	return "companies"
}
