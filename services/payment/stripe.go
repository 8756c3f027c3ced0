package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"toltimed/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

var ErrInvalidAmount = errors.New("payment amount must be positive")

// IntentCreator opens a payment for a quoted booking.
type IntentCreator interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*models.PaymentIntent, error)
}

// IntentRequest describes the amount to collect for a booking session.
type IntentRequest struct {
	SessionID string
	UserID    string
	Amount    float64
	Currency  string
}

// StripeIntents creates Stripe payment intents. New defaults to paymentintent.New.
type StripeIntents struct {
	New    func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Logger *zap.Logger
}

func NewStripeIntents(logger *zap.Logger) *StripeIntents {
	return &StripeIntents{New: paymentintent.New, Logger: logger}
}

// CreateIntent opens an intent for req. Repeated calls for the same session
// and amount reuse Stripe's idempotency key.
func (s *StripeIntents) CreateIntent(ctx context.Context, req IntentRequest) (*models.PaymentIntent, error) {
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return nil, ErrInvalidAmount
	}
	currency := strings.ToLower(req.Currency)
	amount := MinorUnits(req.Amount, currency)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("sessionId", req.SessionID)
	params.AddMetadata("userId", req.UserID)
	params.SetIdempotencyKey(fmt.Sprintf("booking-%s-%d-%s", req.SessionID, amount, currency))

	create := s.New
	if create == nil {
		create = paymentintent.New
	}
	pi, err := create(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("payment intent created",
			zap.String("sessionId", req.SessionID),
			zap.String("intentId", pi.ID),
			zap.Int64("amount", pi.Amount),
		)
	}
	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true, "krw": true, "mga": true,
	"pyg": true, "rwf": true, "ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// MinorUnits converts amount to the smallest unit of currency.
func MinorUnits(amount float64, currency string) int64 {
	if zeroDecimal[strings.ToLower(currency)] {
		return int64(math.Round(amount))
	}
	return int64(math.Round(amount * 100))
}
