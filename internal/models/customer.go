package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Customer is an end user who books trips. Bookings snapshot the customer's
// contact details at creation time, so renaming a customer never rewrites
// historical bookings.
type Customer struct {
	gorm.Model
	CompanyID    uint   `json:"companyId" gorm:"column:company_id;not null"`
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email" gorm:"unique;not null"`
	Phone        string `json:"phone"`
	Password     string `json:"-" gorm:"-:migration"`
	PasswordHash string `json:"-" gorm:"column:password_hash"`
}

// TableName specifies the table name
func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) HashPassword() error {
	if c.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hashedPassword)
	return nil
}

func (c *Customer) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
}
