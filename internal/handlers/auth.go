package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"github.com/ridewellhq/chauffeur-backend/pkg/utils"
	"gorm.io/gorm"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type StaffRegisterInput struct {
	CompanyID uint   `json:"companyId" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Phone     string `json:"phone"`
	UserType  string `json:"userType" binding:"required,oneof=admin dispatcher"`
}

// RegisterStaff creates a staff account (admin or dispatcher) for a company.
func RegisterStaff(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input StaffRegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		user := models.User{
			CompanyID:   input.CompanyID,
			Username:    input.Username,
			Email:       input.Email,
			Password:    input.Password,
			PhoneNumber: input.Phone,
			UserType:    input.UserType,
		}
		if err := user.HashPassword(); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if result := db.Create(&user); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create user: " + result.Error.Error()})
			return
		}

		c.JSON(201, gin.H{
			"message": "User created successfully",
			"user": gin.H{
				"id":          user.ID,
				"email":       user.Email,
				"username":    user.Username,
				"phoneNumber": user.PhoneNumber,
				"userType":    user.UserType,
				"companyId":   user.CompanyID,
			},
		})
	}
}

// LoginStaff authenticates a staff account and issues a token carrying its
// role and company.
func LoginStaff(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.Where("email = ?", input.Email).First(&user); result.Error != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(utils.TokenClaims{
			ID:        user.ID,
			Role:      user.UserType,
			CompanyID: user.CompanyID,
			Email:     user.Email,
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token": token,
			"user": gin.H{
				"id":          user.ID,
				"email":       user.Email,
				"username":    user.Username,
				"phoneNumber": user.PhoneNumber,
				"userType":    user.UserType,
				"companyId":   user.CompanyID,
			},
		})
	}
}

type CustomerRegisterInput struct {
	CompanyID uint   `json:"companyId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Phone     string `json:"phone"`
}

// RegisterCustomer creates a customer account. Customers authenticate
// separately from staff and only ever see their own bookings.
func RegisterCustomer(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CustomerRegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		customer := models.Customer{
			CompanyID: input.CompanyID,
			Name:      input.Name,
			Email:     input.Email,
			Password:  input.Password,
			Phone:     input.Phone,
		}
		if err := customer.HashPassword(); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if result := db.Create(&customer); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create customer: " + result.Error.Error()})
			return
		}

		c.JSON(201, gin.H{
			"message": "Customer created successfully",
			"customer": gin.H{
				"id":        customer.ID,
				"email":     customer.Email,
				"name":      customer.Name,
				"phone":     customer.Phone,
				"companyId": customer.CompanyID,
			},
		})
	}
}

// LoginCustomer authenticates a customer and issues a customer-scoped token.
func LoginCustomer(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var customer models.Customer
		if result := db.Where("email = ?", input.Email).First(&customer); result.Error != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		if err := customer.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(utils.TokenClaims{
			ID:        customer.ID,
			Role:      "customer",
			CompanyID: customer.CompanyID,
			Email:     customer.Email,
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token": token,
			"customer": gin.H{
				"id":        customer.ID,
				"email":     customer.Email,
				"name":      customer.Name,
				"phone":     customer.Phone,
				"companyId": customer.CompanyID,
			},
		})
	}
}
