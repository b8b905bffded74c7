package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridewellhq/chauffeur-backend/internal/domain"
	"github.com/ridewellhq/chauffeur-backend/internal/middleware"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"github.com/ridewellhq/chauffeur-backend/internal/services"
	"gorm.io/gorm"
)

// companyFor resolves which company a request acts on. Authenticated actors
// carry their company in the token; guests must say which operator they are
// booking with.
func companyFor(c *gin.Context, actor domain.Actor) (uint, bool) {
	if actor.CompanyID != 0 {
		return actor.CompanyID, true
	}
	if v := c.Query("company_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err == nil && id != 0 {
			return uint(id), true
		}
	}
	return 0, false
}

// GetQuote prices a trip across the company's available fleet without
// creating anything.
func GetQuote(engine *services.QuoteEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		companyID, ok := companyFor(c, actor)
		if !ok {
			c.JSON(400, gin.H{"error": "company_id is required"})
			return
		}

		var req services.QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		options, err := engine.Quote(c.Request.Context(), companyID, &req)
		if err != nil {
			RespondDomainError(c, err)
			return
		}

		c.JSON(200, gin.H{"options": options})
	}
}

// CreateBooking commits a booking. Guests get the booking access token back
// exactly once, in this response.
func CreateBooking(lifecycle *services.BookingLifecycle, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		companyID, ok := companyFor(c, actor)
		if !ok {
			c.JSON(400, gin.H{"error": "company_id is required"})
			return
		}

		var req services.BookingCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := lifecycle.Create(c.Request.Context(), companyID, actor, &req)
		if err != nil {
			RespondDomainError(c, err)
			return
		}

		hub.NotifyBookingUpdate(booking)

		resp := gin.H{
			"message": "Booking created successfully",
			"booking": booking,
		}
		if booking.IsGuest() {
			resp["accessToken"] = booking.BookingAccessToken
		}
		c.JSON(201, resp)
	}
}

// ListBookings returns the bookings the actor may see: the whole company for
// staff, only their own for customers.
func ListBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)

		q := db.Preload("Vehicle").Preload("Driver").Order("pickup_time DESC")
		switch {
		case actor.IsStaff():
			q = q.Where("company_id = ?", actor.CompanyID)
		case actor.IsCustomer():
			q = q.Where("customer_id = ?", actor.CustomerID)
		default:
			c.JSON(403, gin.H{"error": "Authentication required"})
			return
		}

		if status := c.Query("status"); status != "" {
			if !models.ValidBookingStatus(models.BookingStatus(status)) {
				c.JSON(400, gin.H{"error": "Unknown status filter"})
				return
			}
			q = q.Where("status = ?", status)
		}
		if from := c.Query("from"); from != "" {
			q = q.Where("pickup_time >= ?", from)
		}
		if to := c.Query("to"); to != "" {
			q = q.Where("pickup_time <= ?", to)
		}

		var bookings []models.Booking
		if err := q.Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}

// GetBooking returns one booking. Guests reach it with their access token.
func GetBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking id"})
			return
		}

		var booking models.Booking
		if err := db.Preload("Vehicle").Preload("Driver").Preload("Customer").
			First(&booking, uint(id)).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if !services.CanActOn(actor, &booking) {
			c.JSON(403, gin.H{"error": "Not allowed to view this booking"})
			return
		}

		c.JSON(200, gin.H{"booking": booking})
	}
}

// UpdateBooking applies a partial update, including status transitions and
// cancellation.
func UpdateBooking(lifecycle *services.BookingLifecycle, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking id"})
			return
		}

		var req services.BookingUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := lifecycle.Update(c.Request.Context(), actor, uint(id), &req)
		if err != nil {
			RespondDomainError(c, err)
			return
		}

		hub.NotifyBookingUpdate(booking)

		c.JSON(200, gin.H{
			"message": "Booking updated successfully",
			"booking": booking,
		})
	}
}

// DeleteBooking soft-deletes a booking. Staff only; a customer cancels
// instead of deleting.
func DeleteBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking id"})
			return
		}

		var booking models.Booking
		if err := db.First(&booking, uint(id)).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}
		if !actor.IsStaff() || actor.CompanyID != booking.CompanyID {
			c.JSON(403, gin.H{"error": "Staff access required"})
			return
		}

		if err := db.Delete(&booking).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete booking"})
			return
		}

		c.JSON(200, gin.H{"message": "Booking deleted successfully"})
	}
}
