// Package payment wraps the Stripe payment intent and refund APIs used by
// the admin surface.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/refund"
	"go.uber.org/zap"
)

const (
	// DefaultListLimit is used when a listing gives no limit
	DefaultListLimit = 10
	// MaxListLimit bounds a listing
	MaxListLimit = 100
)

// ErrNotConfigured is returned when no secret key is set
var ErrNotConfigured = errors.New("stripe: secret key is required")

// StripeAdapter retrieves, lists and refunds Stripe payment intents
type StripeAdapter struct {
	logger *zap.Logger
}

// NewStripeAdapter sets the Stripe API key and creates the adapter
func NewStripeAdapter(secretKey string, logger *zap.Logger) (*StripeAdapter, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	stripe.Key = secretKey
	return &StripeAdapter{logger: logger}, nil
}

// GetPayment retrieves a payment intent by id
func (a *StripeAdapter) GetPayment(ctx context.Context, paymentIntentID string) (*Payment, error) {
	a.logger.Debug("Getting Stripe payment intent", zap.String("payment_intent_id", paymentIntentID))

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(paymentIntentID, params)
	if err != nil {
		a.logger.Error("Failed to get Stripe payment intent",
			zap.String("payment_intent_id", paymentIntentID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to get payment intent: %w", err)
	}
	return toPayment(pi), nil
}

// ListPayments lists payment intents newest first
func (a *StripeAdapter) ListPayments(ctx context.Context, input ListInput) ([]*Payment, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	params := &stripe.PaymentIntentListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))
	if input.CustomerID != "" {
		params.Customer = stripe.String(input.CustomerID)
	}
	if input.CreatedAfter != nil || input.CreatedBefore != nil {
		params.CreatedRange = &stripe.RangeQueryParams{}
		if input.CreatedAfter != nil {
			params.CreatedRange.GreaterThanOrEqual = *input.CreatedAfter
		}
		if input.CreatedBefore != nil {
			params.CreatedRange.LesserThanOrEqual = *input.CreatedBefore
		}
	}

	payments := make([]*Payment, 0, limit)
	iter := paymentintent.List(params)
	for len(payments) < limit && iter.Next() {
		payments = append(payments, toPayment(iter.PaymentIntent()))
	}
	if err := iter.Err(); err != nil {
		a.logger.Error("Failed to list Stripe payment intents", zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to list payment intents: %w", err)
	}
	return payments, nil
}

// CreateRefund refunds a payment intent fully or partially
func (a *StripeAdapter) CreateRefund(ctx context.Context, input RefundInput) (*Refund, error) {
	reason := input.Reason
	if reason == "" {
		reason = RefundReasonRequestedByCustomer
	}
	if !reason.IsValid() {
		return nil, fmt.Errorf("stripe: invalid refund reason %q", reason)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(input.PaymentIntentID),
		Reason:        stripe.String(string(reason)),
	}
	params.Context = ctx
	if input.Amount != nil {
		params.Amount = stripe.Int64(*input.Amount)
	}

	r, err := refund.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe refund",
			zap.String("payment_intent_id", input.PaymentIntentID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create refund: %w", err)
	}

	a.logger.Info("Created Stripe refund",
		zap.String("payment_intent_id", input.PaymentIntentID),
		zap.String("refund_id", r.ID),
		zap.Int64("amount", r.Amount))

	out := &Refund{
		ID:              r.ID,
		PaymentIntentID: input.PaymentIntentID,
		Amount:          r.Amount,
		AmountFormatted: FormatAmount(r.Amount, string(r.Currency)),
		Currency:        strings.ToUpper(string(r.Currency)),
		Status:          string(r.Status),
		Reason:          string(r.Reason),
		Created:         time.Unix(r.Created, 0).UTC(),
	}
	if r.PaymentIntent != nil && r.PaymentIntent.ID != "" {
		out.PaymentIntentID = r.PaymentIntent.ID
	}
	return out, nil
}

func toPayment(pi *stripe.PaymentIntent) *Payment {
	p := &Payment{
		ID:              pi.ID,
		Amount:          pi.Amount,
		AmountFormatted: FormatAmount(pi.Amount, string(pi.Currency)),
		AmountReceived:  pi.AmountReceived,
		Currency:        strings.ToUpper(string(pi.Currency)),
		Status:          string(pi.Status),
		Description:     pi.Description,
		ReceiptEmail:    pi.ReceiptEmail,
		Metadata:        pi.Metadata,
		Created:         time.Unix(pi.Created, 0).UTC(),
	}
	if pi.Customer != nil {
		p.CustomerID = pi.Customer.ID
	}
	return p
}
