package models

import (
	"gorm.io/gorm"
)

type Driver struct {
	gorm.Model
	CompanyID     uint   `json:"companyId" gorm:"column:company_id;not null"`
	Name          string `json:"name" gorm:"not null"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"licenseNumber" gorm:"column:license_number"`
	Status        string `json:"status" gorm:"not null;default:'active'"`
}

// TableName specifies the table name
func (Driver) TableName() string {
	return "drivers"
}
