package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ridewellhq/chauffeur-backend/internal/domain"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"github.com/ridewellhq/chauffeur-backend/pkg/utils"
	"gorm.io/gorm"
)

// authorizationBuffer is the multiple of the estimated total placed on hold.
// The hold covers mid-trip changes (waiting time, route changes, extras)
// without a re-authorization round trip; the captured amount is still capped
// by the final price.
const authorizationBuffer = 1.5

// ProcessorIntent is the processor-neutral view of a payment intent.
type ProcessorIntent struct {
	ID               string
	Status           string
	AmountAuthorized float64
	AmountCaptured   float64
	Raw              []byte
}

// AuthorizeParams describes the hold to place.
type AuthorizeParams struct {
	Amount          float64
	Currency        string
	PaymentMethodID string
	CustomerEmail   string
	Description     string
}

// PaymentProcessor abstracts the payment gateway. All amounts are in major
// currency units; implementations convert to the gateway's representation.
type PaymentProcessor interface {
	Authorize(ctx context.Context, params AuthorizeParams) (*ProcessorIntent, error)
	Capture(ctx context.Context, intentID string, amount float64) (*ProcessorIntent, error)
	Retrieve(ctx context.Context, intentID string) (*ProcessorIntent, error)
}

// PaymentAuthority owns every write to booking_payments rows and the
// payment_status column on bookings. Client calls and webhook deliveries both
// funnel through it, serialized per intent.
type PaymentAuthority struct {
	db        *gorm.DB
	processor PaymentProcessor
}

func NewPaymentAuthority(db *gorm.DB, processor PaymentProcessor) *PaymentAuthority {
	return &PaymentAuthority{db: db, processor: processor}
}

// Authorize places a hold of 1.5x the booking's current total. Every call
// creates a fresh payment row, success or failure: a declined attempt is kept
// with its failure detail under a synthesized intent id so the history of
// attempts survives.
func (p *PaymentAuthority) Authorize(ctx context.Context, actor domain.Actor, bookingID uint, paymentMethodID string) (*models.BookingPayment, error) {
	var booking models.Booking
	if err := p.db.First(&booking, bookingID).Error; err != nil {
		return nil, &domain.NotFoundError{Resource: "booking", Err: err}
	}
	if !CanActOn(actor, &booking) {
		return nil, &domain.UnauthorizedError{Msg: "not allowed to pay for this booking"}
	}
	if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusCompleted {
		return nil, &domain.StateError{Msg: "booking is no longer payable"}
	}
	if booking.TotalPrice <= 0 {
		return nil, &domain.StateError{Msg: "booking has no priced total to authorize against"}
	}

	config, err := GetSystemConfig(ctx, p.db, booking.CompanyID)
	if err != nil {
		return nil, &domain.NotFoundError{Resource: "system config", Err: err}
	}

	holdAmount := utils.Round2(booking.TotalPrice * authorizationBuffer)
	payment := models.BookingPayment{
		BookingID:       booking.ID,
		CustomerID:      booking.CustomerID,
		Provider:        "stripe",
		Currency:        config.Currency,
		PaymentMethodID: paymentMethodID,
		EstimatedAmount: booking.TotalPrice,
	}

	intent, perr := p.processor.Authorize(ctx, AuthorizeParams{
		Amount:          holdAmount,
		Currency:        config.Currency,
		PaymentMethodID: paymentMethodID,
		CustomerEmail:   booking.Email,
		Description:     "Booking hold",
	})
	if perr != nil {
		payment.Status = models.PaymentStatusFailed
		payment.AuthorizedAmount = holdAmount
		if pe, ok := domain.AsProcessor(perr); ok {
			payment.FailureCode = pe.Code
			payment.FailureMessage = pe.Msg
			payment.PaymentIntentID = pe.IntentID
			payment.RawPayload = string(pe.Raw)
		}
		if payment.PaymentIntentID == "" {
			// The row still needs a unique intent id even when the gateway
			// never issued one.
			payment.PaymentIntentID = "failed_" + uuid.NewString()
		}
		if err := p.db.Create(&payment).Error; err != nil {
			return nil, err
		}
		p.db.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Update("payment_status", bookingPaymentStatusFor(payment.Status))
		return &payment, perr
	}

	payment.PaymentIntentID = intent.ID
	payment.AuthorizedAmount = intent.AmountAuthorized
	payment.Status = paymentStatusFor(intent.Status)
	payment.RawPayload = string(intent.Raw)
	if err := p.db.Create(&payment).Error; err != nil {
		return nil, err
	}

	p.db.Model(&models.Booking{}).Where("id = ?", booking.ID).
		Update("payment_status", bookingPaymentStatusFor(payment.Status))

	return &payment, nil
}

// Capture settles part of an outstanding hold. All preconditions are checked
// before the processor is contacted: a hold must exist, it must still be
// capturable, the amount must be positive, and it cannot exceed what was
// authorized.
func (p *PaymentAuthority) Capture(ctx context.Context, actor domain.Actor, bookingID uint, amount float64) (*models.BookingPayment, error) {
	var booking models.Booking
	if err := p.db.First(&booking, bookingID).Error; err != nil {
		return nil, &domain.NotFoundError{Resource: "booking", Err: err}
	}
	if !CanActOn(actor, &booking) {
		return nil, &domain.UnauthorizedError{Msg: "not allowed to capture for this booking"}
	}
	return p.CaptureForBooking(ctx, bookingID, amount)
}

// CaptureForBooking is Capture without the actor check, for internal callers
// such as the cancellation path.
func (p *PaymentAuthority) CaptureForBooking(ctx context.Context, bookingID uint, amount float64) (*models.BookingPayment, error) {
	payment, err := p.latestPayment(bookingID)
	if err != nil {
		return nil, err
	}

	if !payment.IsCapturable() {
		return nil, &domain.StateError{Msg: "payment is not in a capturable state"}
	}
	if amount <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Msg: "capture amount must be positive"}
	}
	amount = utils.Round2(amount)
	if amount > payment.AuthorizedAmount {
		return nil, &domain.StateError{Msg: "capture amount exceeds the authorized hold"}
	}

	var out *models.BookingPayment
	err = WithPaymentLock(ctx, payment.PaymentIntentID, func() error {
		// Re-read under the lock; a webhook may have settled the intent in
		// the meantime.
		var fresh models.BookingPayment
		if err := p.db.First(&fresh, payment.ID).Error; err != nil {
			return err
		}
		if !fresh.IsCapturable() {
			return &domain.StateError{Msg: "payment is not in a capturable state"}
		}

		intent, perr := p.processor.Capture(ctx, fresh.PaymentIntentID, amount)
		if perr != nil {
			fresh.Status = models.PaymentStatusFailed
			if pe, ok := domain.AsProcessor(perr); ok {
				fresh.FailureCode = pe.Code
				fresh.FailureMessage = pe.Msg
				fresh.RawPayload = string(pe.Raw)
			}
			p.db.Save(&fresh)
			p.db.Model(&models.Booking{}).Where("id = ?", fresh.BookingID).
				Update("payment_status", bookingPaymentStatusFor(fresh.Status))
			return perr
		}

		fresh.Status = paymentStatusFor(intent.Status)
		fresh.CapturedAmount = utils.Round2(intent.AmountCaptured)
		fresh.AmountToCapture = amount
		fresh.RawPayload = string(intent.Raw)
		if err := p.db.Save(&fresh).Error; err != nil {
			return err
		}

		p.db.Model(&models.Booking{}).Where("id = ?", fresh.BookingID).
			Update("payment_status", bookingPaymentStatusFor(fresh.Status))
		out = &fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PaymentsForBooking lists the attempts for a booking, newest first.
func (p *PaymentAuthority) PaymentsForBooking(actor domain.Actor, bookingID uint) ([]models.BookingPayment, error) {
	var booking models.Booking
	if err := p.db.First(&booking, bookingID).Error; err != nil {
		return nil, &domain.NotFoundError{Resource: "booking", Err: err}
	}
	if !CanActOn(actor, &booking) {
		return nil, &domain.UnauthorizedError{Msg: "not allowed to view payments for this booking"}
	}

	var payments []models.BookingPayment
	if err := p.db.Where("booking_id = ?", bookingID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// ApplyEvent reconciles one processor event against the local payment row.
// Events for intents this system never recorded are ignored, and replaying an
// event lands on the same final state.
func (p *PaymentAuthority) ApplyEvent(ctx context.Context, eventType string, intent *ProcessorIntent) error {
	return WithPaymentLock(ctx, intent.ID, func() error {
		var payment models.BookingPayment
		err := p.db.Where("payment_intent_id = ?", intent.ID).First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Not ours: another environment or a manually created intent.
			return nil
		}
		if err != nil {
			return err
		}

		switch eventType {
		case "payment_intent.succeeded":
			payment.Status = models.PaymentStatusSucceeded
			payment.CapturedAmount = utils.Round2(intent.AmountCaptured)
		case "payment_intent.payment_failed":
			payment.Status = models.PaymentStatusFailed
		case "payment_intent.canceled":
			payment.Status = models.PaymentStatusCanceled
		case "payment_intent.amount_capturable_updated":
			payment.Status = models.PaymentStatusRequiresCapture
			payment.AuthorizedAmount = utils.Round2(intent.AmountAuthorized)
		default:
			// Mirror whatever state the processor reports.
			payment.Status = paymentStatusFor(intent.Status)
		}
		if len(intent.Raw) > 0 {
			payment.RawPayload = string(intent.Raw)
		}

		if err := p.db.Save(&payment).Error; err != nil {
			return err
		}
		return p.db.Model(&models.Booking{}).Where("id = ?", payment.BookingID).
			Update("payment_status", bookingPaymentStatusFor(payment.Status)).Error
	})
}

// latestPayment returns the most recent attempt for a booking. Only the
// newest row is ever captured against; earlier attempts are history.
func (p *PaymentAuthority) latestPayment(bookingID uint) (*models.BookingPayment, error) {
	var payment models.BookingPayment
	err := p.db.Where("booking_id = ?", bookingID).Order("created_at DESC").First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.StateError{Msg: "no authorization exists for this booking"}
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// paymentStatusFor maps a processor intent status onto the local payment
// status vocabulary.
func paymentStatusFor(intentStatus string) string {
	switch intentStatus {
	case "requires_capture":
		return models.PaymentStatusRequiresCapture
	case "succeeded":
		return models.PaymentStatusSucceeded
	case "canceled":
		return models.PaymentStatusCanceled
	case "requires_payment_method", "requires_confirmation", "requires_action", "processing":
		return models.PaymentStatusCreated
	default:
		return models.PaymentStatusFailed
	}
}

// bookingPaymentStatusFor maps a payment row status onto the coarse
// payment_status shown on the booking itself.
func bookingPaymentStatusFor(paymentStatus string) string {
	switch paymentStatus {
	case models.PaymentStatusSucceeded:
		return "paid"
	case models.PaymentStatusRequiresCapture:
		return "authorized"
	case models.PaymentStatusFailed:
		return "failed"
	case models.PaymentStatusCanceled:
		return "canceled"
	default:
		return "pending"
	}
}
