package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridewellhq/chauffeur-backend/internal/middleware"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"gorm.io/gorm"
)

type VehicleInput struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Capacity    int     `json:"capacity" binding:"required,min=1"`
	Luggage     int     `json:"luggage"`
	HourlyRate  float64 `json:"hourlyRate" binding:"min=0"`
	PerKmRate   float64 `json:"perKmRate" binding:"min=0"`
	AirportRate float64 `json:"airportRate" binding:"min=0"`
	Status      string  `json:"status"`
	Image       string  `json:"image"`
}

// ListVehicles returns the company's fleet. Clients quoting a trip see only
// active vehicles; staff can ask for everything with ?all=true.
func ListVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		companyID, ok := companyFor(c, actor)
		if !ok {
			c.JSON(400, gin.H{"error": "company_id is required"})
			return
		}

		q := db.Where("company_id = ?", companyID)
		if !(actor.IsStaff() && c.Query("all") == "true") {
			q = q.Where("status = ?", string(models.VehicleStatusActive))
		}

		var vehicles []models.Vehicle
		if err := q.Order("capacity ASC").Find(&vehicles).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch vehicles"})
			return
		}

		c.JSON(200, gin.H{"vehicles": vehicles})
	}
}

// CreateVehicle adds a vehicle to the fleet. Rate changes only affect future
// quotes; existing bookings keep their snapshots.
func CreateVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)

		var input VehicleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		status := input.Status
		if status == "" {
			status = string(models.VehicleStatusActive)
		}

		vehicle := models.Vehicle{
			CompanyID:   actor.CompanyID,
			Name:        input.Name,
			Category:    input.Category,
			Capacity:    input.Capacity,
			Luggage:     input.Luggage,
			HourlyRate:  input.HourlyRate,
			PerKmRate:   input.PerKmRate,
			AirportRate: input.AirportRate,
			Status:      status,
			Image:       input.Image,
		}

		if result := db.Create(&vehicle); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create vehicle: " + result.Error.Error()})
			return
		}

		c.JSON(201, gin.H{
			"message": "Vehicle created successfully",
			"vehicle": vehicle,
		})
	}
}

// UpdateVehicle changes a vehicle's details or rate card.
func UpdateVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid vehicle id"})
			return
		}

		var vehicle models.Vehicle
		if err := db.Where("company_id = ?", actor.CompanyID).First(&vehicle, uint(id)).Error; err != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}

		var input VehicleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		vehicle.Name = input.Name
		vehicle.Category = input.Category
		vehicle.Capacity = input.Capacity
		vehicle.Luggage = input.Luggage
		vehicle.HourlyRate = input.HourlyRate
		vehicle.PerKmRate = input.PerKmRate
		vehicle.AirportRate = input.AirportRate
		if input.Status != "" {
			vehicle.Status = input.Status
		}
		if input.Image != "" {
			vehicle.Image = input.Image
		}

		if err := db.Save(&vehicle).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update vehicle"})
			return
		}

		c.JSON(200, gin.H{
			"message": "Vehicle updated successfully",
			"vehicle": vehicle,
		})
	}
}

// DeleteVehicle retires a vehicle from the fleet. The row is soft-deleted so
// historical bookings keep their reference.
func DeleteVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid vehicle id"})
			return
		}

		var vehicle models.Vehicle
		if err := db.Where("company_id = ?", actor.CompanyID).First(&vehicle, uint(id)).Error; err != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}

		if err := db.Delete(&vehicle).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete vehicle"})
			return
		}

		c.JSON(200, gin.H{"message": "Vehicle deleted successfully"})
	}
}
