package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ridewellhq/chauffeur-backend/internal/domain"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
)

func bookingRow(id, companyID uint, status string, total float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "company_id", "status", "total_price", "final_price", "email", "payment_status"}).
		AddRow(id, companyID, status, total, total, "rider@example.com", "unpaid")
}

func configRow(companyID uint) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "company_id", "tax_rate", "cancellation_fee", "rate_buffer", "currency"}).
		AddRow(1, companyID, 10.0, 25.0, 5.0, "usd")
}

func paymentRow(id, bookingID uint, intentID, status string, authorized float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "booking_id", "payment_intent_id", "status", "authorized_amount", "estimated_amount", "currency"}).
		AddRow(id, bookingID, intentID, status, authorized, 210.0, "usd")
}

func staffActor(companyID uint) domain.Actor {
	return domain.Actor{Role: domain.RoleAdmin, UserID: 9, CompanyID: companyID}
}

func TestAuthorizeHoldsBufferedAmount(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).WillReturnRows(bookingRow(1, 1, "pending", 210))
	mock.ExpectQuery(`SELECT (.+) FROM "system_configs"`).WillReturnRows(configRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "booking_payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	processor := &fakeProcessor{
		authorizeIntent: &ProcessorIntent{
			ID:               "pi_100",
			Status:           "requires_capture",
			AmountAuthorized: 315,
		},
	}
	authority := NewPaymentAuthority(db, processor)

	payment, err := authority.Authorize(context.Background(), staffActor(1), 1, "pm_card")
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}

	// 1.5x the 210 total.
	if processor.lastAmount != 315 {
		t.Errorf("hold amount = %v, want 315", processor.lastAmount)
	}
	if payment.Status != models.PaymentStatusRequiresCapture {
		t.Errorf("status = %q, want requires_capture", payment.Status)
	}
	if payment.AuthorizedAmount != 315 || payment.EstimatedAmount != 210 {
		t.Errorf("amounts = %v/%v, want 315/210", payment.AuthorizedAmount, payment.EstimatedAmount)
	}
	if payment.PaymentIntentID != "pi_100" {
		t.Errorf("intent id = %q, want pi_100", payment.PaymentIntentID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthorizeDeclinedKeepsFailedAttempt(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).WillReturnRows(bookingRow(1, 1, "pending", 210))
	mock.ExpectQuery(`SELECT (.+) FROM "system_configs"`).WillReturnRows(configRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "booking_payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings"`).
		WithArgs("failed", sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	processor := &fakeProcessor{
		authorizeErr: &domain.ProcessorError{
			Code:     "card_declined",
			Msg:      "Your card was declined.",
			IntentID: "pi_declined",
		},
	}
	authority := NewPaymentAuthority(db, processor)

	payment, err := authority.Authorize(context.Background(), staffActor(1), 1, "pm_card")
	if err == nil {
		t.Fatal("expected processor error")
	}
	if !domain.IsProcessor(err) {
		t.Fatalf("error %v is not a processor error", err)
	}

	// The failed attempt is still a row.
	if payment == nil {
		t.Fatal("declined attempt returned no payment row")
	}
	if payment.Status != models.PaymentStatusFailed {
		t.Errorf("status = %q, want failed", payment.Status)
	}
	if payment.FailureCode != "card_declined" {
		t.Errorf("failure code = %q, want card_declined", payment.FailureCode)
	}
	if payment.PaymentIntentID != "pi_declined" {
		t.Errorf("intent id = %q, want the gateway's declined intent", payment.PaymentIntentID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthorizeRejectsTerminalBooking(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).WillReturnRows(bookingRow(1, 1, "cancelled", 25))

	processor := &fakeProcessor{}
	authority := NewPaymentAuthority(db, processor)

	_, err := authority.Authorize(context.Background(), staffActor(1), 1, "pm_card")
	if err == nil || !domain.IsState(err) {
		t.Fatalf("error = %v, want state error", err)
	}
	if processor.authorizeCalls != 0 {
		t.Error("processor contacted for a terminal booking")
	}
}

func TestCaptureHappyPath(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "booking_payments"`).
		WillReturnRows(paymentRow(10, 1, "pi_100", models.PaymentStatusRequiresCapture, 315))
	mock.ExpectQuery(`SELECT (.+) FROM "booking_payments"`).
		WillReturnRows(paymentRow(10, 1, "pi_100", models.PaymentStatusRequiresCapture, 315))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "booking_payments"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	processor := &fakeProcessor{
		captureIntent: &ProcessorIntent{
			ID:             "pi_100",
			Status:         "succeeded",
			AmountCaptured: 210,
		},
	}
	authority := NewPaymentAuthority(db, processor)

	payment, err := authority.CaptureForBooking(context.Background(), 1, 210)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if processor.lastCaptureID != "pi_100" || processor.lastAmount != 210 {
		t.Errorf("processor called with %q/%v, want pi_100/210", processor.lastCaptureID, processor.lastAmount)
	}
	if payment.Status != models.PaymentStatusSucceeded {
		t.Errorf("status = %q, want succeeded", payment.Status)
	}
	if payment.CapturedAmount != 210 {
		t.Errorf("captured = %v, want 210", payment.CapturedAmount)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCaptureFailureMarksPaymentFailed(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "booking_payments"`).
		WillReturnRows(paymentRow(10, 1, "pi_100", models.PaymentStatusRequiresCapture, 315))
	mock.ExpectQuery(`SELECT (.+) FROM "booking_payments"`).
		WillReturnRows(paymentRow(10, 1, "pi_100", models.PaymentStatusRequiresCapture, 315))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "booking_payments"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings"`).
		WithArgs("failed", sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	processor := &fakeProcessor{
		captureErr: &domain.ProcessorError{Code: "processing_error", Msg: "Try again later."},
	}
	authority := NewPaymentAuthority(db, processor)

	_, err := authority.CaptureForBooking(context.Background(), 1, 210)
	if err == nil || !domain.IsProcessor(err) {
		t.Fatalf("error = %v, want processor error", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCapturePreconditionsBlockProcessorCall(t *testing.T) {
	tests := []struct {
		name       string
		row        *sqlmock.Rows
		amount     float64
		wantState  bool
		wantValerr bool
	}{
		{
			name:      "already captured",
			row:       paymentRow(10, 1, "pi_100", models.PaymentStatusSucceeded, 315),
			amount:    100,
			wantState: true,
		},
		{
			name:      "failed authorization",
			row:       paymentRow(10, 1, "pi_100", models.PaymentStatusFailed, 315),
			amount:    100,
			wantState: true,
		},
		{
			name:       "non-positive amount",
			row:        paymentRow(10, 1, "pi_100", models.PaymentStatusRequiresCapture, 315),
			amount:     0,
			wantValerr: true,
		},
		{
			name:      "exceeds authorization",
			row:       paymentRow(10, 1, "pi_100", models.PaymentStatusRequiresCapture, 315),
			amount:    400,
			wantState: true,
		},
	}

	for _, tt := range tests {
		db, mock := newTestDB(t)
		mock.ExpectQuery(`SELECT (.+) FROM "booking_payments"`).WillReturnRows(tt.row)

		processor := &fakeProcessor{}
		authority := NewPaymentAuthority(db, processor)

		_, err := authority.CaptureForBooking(context.Background(), 1, tt.amount)
		if err == nil {
			t.Errorf("%s: capture accepted", tt.name)
			continue
		}
		if tt.wantState && !domain.IsState(err) {
			t.Errorf("%s: error %v is not a state error", tt.name, err)
		}
		if tt.wantValerr && !domain.IsValidation(err) {
			t.Errorf("%s: error %v is not a validation error", tt.name, err)
		}
		if processor.captureCalls != 0 {
			t.Errorf("%s: processor contacted before preconditions", tt.name)
		}
	}
}

func TestCaptureWithoutAuthorization(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "booking_payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	authority := NewPaymentAuthority(db, &fakeProcessor{})

	_, err := authority.CaptureForBooking(context.Background(), 1, 100)
	if err == nil || !domain.IsState(err) {
		t.Fatalf("error = %v, want state error for missing authorization", err)
	}
}

func TestApplyEventUnknownIntentIsNoop(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "booking_payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	authority := NewPaymentAuthority(db, &fakeProcessor{})

	err := authority.ApplyEvent(context.Background(), "payment_intent.succeeded", &ProcessorIntent{ID: "pi_foreign"})
	if err != nil {
		t.Fatalf("unknown intent event errored: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApplyEventIsIdempotent(t *testing.T) {
	db, mock := newTestDB(t)

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT (.+) FROM "booking_payments"`).
			WillReturnRows(paymentRow(10, 1, "pi_100", models.PaymentStatusRequiresCapture, 315))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "booking_payments"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "bookings"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	authority := NewPaymentAuthority(db, &fakeProcessor{})
	intent := &ProcessorIntent{ID: "pi_100", Status: "succeeded", AmountCaptured: 210}

	if err := authority.ApplyEvent(context.Background(), "payment_intent.succeeded", intent); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := authority.ApplyEvent(context.Background(), "payment_intent.succeeded", intent); err != nil {
		t.Fatalf("replayed delivery: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPaymentStatusMapping(t *testing.T) {
	tests := []struct {
		intentStatus string
		want         string
	}{
		{"requires_capture", models.PaymentStatusRequiresCapture},
		{"succeeded", models.PaymentStatusSucceeded},
		{"canceled", models.PaymentStatusCanceled},
		{"processing", models.PaymentStatusCreated},
		{"requires_action", models.PaymentStatusCreated},
		{"something_else", models.PaymentStatusFailed},
	}
	for _, tt := range tests {
		if got := paymentStatusFor(tt.intentStatus); got != tt.want {
			t.Errorf("paymentStatusFor(%q) = %q, want %q", tt.intentStatus, got, tt.want)
		}
	}
}

func TestBookingPaymentStatusMapping(t *testing.T) {
	tests := []struct {
		paymentStatus string
		want          string
	}{
		{models.PaymentStatusSucceeded, "paid"},
		{models.PaymentStatusRequiresCapture, "authorized"},
		{models.PaymentStatusFailed, "failed"},
		{models.PaymentStatusCanceled, "canceled"},
		{models.PaymentStatusCreated, "pending"},
	}
	for _, tt := range tests {
		if got := bookingPaymentStatusFor(tt.paymentStatus); got != tt.want {
			t.Errorf("bookingPaymentStatusFor(%q) = %q, want %q", tt.paymentStatus, got, tt.want)
		}
	}
}
