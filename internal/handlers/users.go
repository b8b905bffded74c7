package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ridewellhq/chauffeur-backend/internal/middleware"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"gorm.io/gorm"
)

// GetProfile retrieves the authenticated principal's profile, staff or
// customer.
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)

		if actor.IsCustomer() {
			var customer models.Customer
			if err := db.First(&customer, actor.CustomerID).Error; err != nil {
				c.JSON(404, gin.H{"error": "Customer not found"})
				return
			}
			c.JSON(200, gin.H{
				"id":        customer.ID,
				"email":     customer.Email,
				"name":      customer.Name,
				"phone":     customer.Phone,
				"companyId": customer.CompanyID,
				"role":      "customer",
			})
			return
		}

		var user models.User
		if err := db.First(&user, actor.UserID).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"username":    user.Username,
			"phoneNumber": user.PhoneNumber,
			"userType":    user.UserType,
			"companyId":   user.CompanyID,
		})
	}
}

// UpdateProfile updates the authenticated principal's contact details.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)

		var input struct {
			Username *string `json:"username"`
			Name     *string `json:"name"`
			Phone    *string `json:"phone"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if actor.IsCustomer() {
			var customer models.Customer
			if err := db.First(&customer, actor.CustomerID).Error; err != nil {
				c.JSON(404, gin.H{"error": "Customer not found"})
				return
			}
			if input.Name != nil {
				customer.Name = *input.Name
			}
			if input.Phone != nil {
				customer.Phone = *input.Phone
			}
			if err := db.Save(&customer).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to update profile"})
				return
			}
			c.JSON(200, gin.H{
				"id":    customer.ID,
				"email": customer.Email,
				"name":  customer.Name,
				"phone": customer.Phone,
			})
			return
		}

		var user models.User
		if err := db.First(&user, actor.UserID).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}
		if input.Username != nil {
			user.Username = *input.Username
		}
		if input.Phone != nil {
			user.PhoneNumber = *input.Phone
		}
		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"username":    user.Username,
			"phoneNumber": user.PhoneNumber,
			"userType":    user.UserType,
		})
	}
}
