package services

import (
	"context"
	"encoding/json"
	"math"
	"os"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/ridewellhq/chauffeur-backend/internal/domain"
)

// StripeProcessor implements PaymentProcessor against Stripe PaymentIntents
// with manual capture.
type StripeProcessor struct{}

// NewStripeProcessor configures the Stripe client from the environment.
func NewStripeProcessor() *StripeProcessor {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &StripeProcessor{}
}

// toMinorUnits converts a major-unit amount to Stripe's integer cents.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}

func (s *StripeProcessor) Authorize(ctx context.Context, params AuthorizeParams) (*ProcessorIntent, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toMinorUnits(params.Amount)),
		Currency:      stripe.String(params.Currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Description:   stripe.String(params.Description),
	}
	if params.PaymentMethodID != "" {
		piParams.PaymentMethod = stripe.String(params.PaymentMethodID)
		piParams.Confirm = stripe.Bool(true)
	}
	if params.CustomerEmail != "" {
		piParams.ReceiptEmail = stripe.String(params.CustomerEmail)
	}
	piParams.Context = ctx

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (s *StripeProcessor) Capture(ctx context.Context, intentID string, amount float64) (*ProcessorIntent, error) {
	params := &stripe.PaymentIntentCaptureParams{
		AmountToCapture: stripe.Int64(toMinorUnits(amount)),
	}
	params.Context = ctx

	pi, err := paymentintent.Capture(intentID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (s *StripeProcessor) Retrieve(ctx context.Context, intentID string) (*ProcessorIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *ProcessorIntent {
	authorized := pi.AmountCapturable
	if authorized == 0 {
		authorized = pi.Amount
	}
	var raw []byte
	if pi.LastResponse != nil {
		raw = pi.LastResponse.RawJSON
	}
	return &ProcessorIntent{
		ID:               pi.ID,
		Status:           string(pi.Status),
		AmountAuthorized: fromMinorUnits(authorized),
		AmountCaptured:   fromMinorUnits(pi.AmountReceived),
		Raw:              raw,
	}
}

func wrapStripeError(err error) error {
	if se, ok := err.(*stripe.Error); ok {
		pe := &domain.ProcessorError{
			Code: string(se.Code),
			Msg:  se.Msg,
			Err:  err,
		}
		if se.PaymentIntent != nil {
			pe.IntentID = se.PaymentIntent.ID
			if raw, jerr := json.Marshal(se.PaymentIntent); jerr == nil {
				pe.Raw = raw
			}
		}
		return pe
	}
	return &domain.ProcessorError{Msg: err.Error(), Err: err}
}

// VerifyWebhook checks the signature on a raw webhook delivery and extracts
// the event type and the payment intent it concerns. Deliveries that are not
// about a payment intent return a nil intent.
func VerifyWebhook(payload []byte, signatureHeader string) (string, *ProcessorIntent, error) {
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	event, err := webhook.ConstructEvent(payload, signatureHeader, secret)
	if err != nil {
		return "", nil, &domain.UnauthorizedError{Msg: "webhook signature verification failed"}
	}

	eventType := string(event.Type)
	if !isPaymentIntentEvent(eventType) {
		return eventType, nil, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return eventType, nil, &domain.ValidationError{Field: "payload", Msg: "malformed payment intent payload", Err: err}
	}

	authorized := pi.AmountCapturable
	if authorized == 0 {
		authorized = pi.Amount
	}
	return eventType, &ProcessorIntent{
		ID:               pi.ID,
		Status:           string(pi.Status),
		AmountAuthorized: fromMinorUnits(authorized),
		AmountCaptured:   fromMinorUnits(pi.AmountReceived),
		Raw:              event.Data.Raw,
	}, nil
}

func isPaymentIntentEvent(eventType string) bool {
	const prefix = "payment_intent."
	return len(eventType) > len(prefix) && eventType[:len(prefix)] == prefix
}
