package models

import (
	"gorm.io/gorm"
)

// Payment statuses mirror the processor's intent state machine. Rows are
// append-per-attempt: a second authorization creates a new row and the capture
// path always acts on the most recently created one.
const (
	PaymentStatusCreated         = "created"
	PaymentStatusRequiresCapture = "requires_capture"
	PaymentStatusSucceeded       = "succeeded"
	PaymentStatusFailed          = "failed"
	PaymentStatusCanceled        = "canceled"
)

// BookingPayment is one authorization attempt against the processor and its
// outcome. It is created and mutated only by the payment authority and the
// webhook reconciliation path.
type BookingPayment struct {
	gorm.Model
	BookingID  uint  `json:"bookingId" gorm:"column:booking_id;not null"`
	CustomerID *uint `json:"customerId" gorm:"column:customer_id"`

	Provider        string `json:"provider" gorm:"not null;default:'stripe'"`
	Currency        string `json:"currency" gorm:"size:10;not null;default:'usd'"`
	PaymentIntentID string `json:"paymentIntentId" gorm:"column:payment_intent_id;uniqueIndex;not null"`
	PaymentMethodID string `json:"paymentMethodId" gorm:"column:payment_method_id"`

	EstimatedAmount  float64 `json:"estimatedAmount" gorm:"column:estimated_amount;not null"`
	AuthorizedAmount float64 `json:"authorizedAmount" gorm:"column:authorized_amount;not null"`
	CapturedAmount   float64 `json:"capturedAmount" gorm:"column:captured_amount"`
	AmountToCapture  float64 `json:"amountToCapture" gorm:"column:amount_to_capture"`

	Status         string `json:"status" gorm:"size:50;not null;default:'created'"`
	FailureCode    string `json:"failureCode" gorm:"column:failure_code"`
	FailureMessage string `json:"failureMessage" gorm:"column:failure_message"`

	// Last raw processor response, kept verbatim for audit.
	RawPayload string `json:"-" gorm:"column:raw_payload;type:text"`
}

// TableName specifies the table name
func (BookingPayment) TableName() string {
	return "booking_payments"
}

// IsCapturable reports whether the payment holds funds that can still be
// captured.
func (p *BookingPayment) IsCapturable() bool {
	return p.Status == PaymentStatusRequiresCapture
}
