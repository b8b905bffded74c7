package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridewellhq/chauffeur-backend/internal/middleware"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"github.com/ridewellhq/chauffeur-backend/internal/services"
	"gorm.io/gorm"
)

type AuthorizePaymentInput struct {
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}

// AuthorizePayment places a hold against the booking's current total. Open
// to staff, the owning customer, and guests holding the access token.
func AuthorizePayment(db *gorm.DB, authority *services.PaymentAuthority, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking id"})
			return
		}

		var input AuthorizePaymentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		payment, err := authority.Authorize(c.Request.Context(), actor, uint(bookingID), input.PaymentMethodID)
		if err != nil {
			// A declined attempt still produced a payment row; the error
			// mapping reports the decline.
			RespondDomainError(c, err)
			return
		}

		notifyPayment(db, hub, payment)

		c.JSON(201, gin.H{
			"message": "Payment authorized",
			"payment": payment,
		})
	}
}

type CapturePaymentInput struct {
	Amount float64 `json:"amount"`
}

// CapturePayment settles the hold. Open to staff, the owning customer, and
// guests holding the access token; the amount defaults to the booking's
// final price when omitted.
func CapturePayment(db *gorm.DB, authority *services.PaymentAuthority, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking id"})
			return
		}

		var input CapturePaymentInput
		if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		amount := input.Amount
		if amount == 0 {
			var booking models.Booking
			if err := db.First(&booking, uint(bookingID)).Error; err != nil {
				c.JSON(404, gin.H{"error": "Booking not found"})
				return
			}
			amount = booking.FinalPrice
		}

		payment, err := authority.Capture(c.Request.Context(), actor, uint(bookingID), amount)
		if err != nil {
			RespondDomainError(c, err)
			return
		}

		notifyPayment(db, hub, payment)

		c.JSON(200, gin.H{
			"message": "Payment captured",
			"payment": payment,
		})
	}
}

// ListBookingPayments returns the payment attempts for a booking, newest
// first.
func ListBookingPayments(authority *services.PaymentAuthority) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.GetActor(c)
		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking id"})
			return
		}

		payments, err := authority.PaymentsForBooking(actor, uint(bookingID))
		if err != nil {
			RespondDomainError(c, err)
			return
		}

		c.JSON(200, gin.H{"payments": payments})
	}
}

// StripeWebhook receives processor events. The signature check is the only
// authentication; deliveries about intents this system never issued are
// acknowledged and dropped.
func StripeWebhook(db *gorm.DB, authority *services.PaymentAuthority, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := c.GetRawData()
		if err != nil {
			c.JSON(400, gin.H{"error": "Failed to read payload"})
			return
		}

		eventType, intent, err := services.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		if intent == nil {
			// Not a payment intent event; acknowledge so Stripe stops
			// retrying.
			c.JSON(200, gin.H{"received": true})
			return
		}

		if err := authority.ApplyEvent(c.Request.Context(), eventType, intent); err != nil {
			RespondDomainError(c, err)
			return
		}

		var payment models.BookingPayment
		if err := db.Where("payment_intent_id = ?", intent.ID).First(&payment).Error; err == nil {
			notifyPayment(db, hub, &payment)
		}

		c.JSON(200, gin.H{"received": true})
	}
}

// notifyPayment pushes a payment change to the owning company's dispatch
// boards.
func notifyPayment(db *gorm.DB, hub *services.Hub, payment *models.BookingPayment) {
	if hub == nil || payment == nil {
		return
	}
	var booking models.Booking
	if err := db.First(&booking, payment.BookingID).Error; err != nil {
		return
	}
	hub.NotifyPaymentUpdate(booking.CompanyID, payment)
}
