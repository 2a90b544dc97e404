package tools

import (
	"context"

	"github.com/MuratKus/burbarshop/internal/infrastructure/mcp"
	"github.com/MuratKus/burbarshop/internal/infrastructure/payment"
)

// PaymentProvider is the payment API the payment tools call
type PaymentProvider interface {
	GetPayment(ctx context.Context, paymentIntentID string) (*payment.Payment, error)
	ListPayments(ctx context.Context, input payment.ListInput) ([]*payment.Payment, error)
	CreateRefund(ctx context.Context, input payment.RefundInput) (*payment.Refund, error)
}

const createRefundSchema = `{
  "type": "object",
  "properties": {
    "payment_intent_id": {"type": "string", "pattern": "^pi_[A-Za-z0-9_]+$", "description": "Payment intent to refund"},
    "amount": {"type": "integer", "minimum": 1, "description": "Amount in minor units; omit for a full refund"},
    "reason": {"type": "string", "enum": ["duplicate", "fraudulent", "requested_by_customer"], "default": "requested_by_customer"}
  },
  "required": ["payment_intent_id"],
  "additionalProperties": false
}`

const getPaymentSchema = `{
  "type": "object",
  "properties": {
    "payment_intent_id": {"type": "string", "pattern": "^pi_[A-Za-z0-9_]+$", "description": "Payment intent id"}
  },
  "required": ["payment_intent_id"],
  "additionalProperties": false
}`

const listPaymentsSchema = `{
  "type": "object",
  "properties": {
    "limit": {"type": "integer", "minimum": 1, "maximum": 100, "default": 10},
    "created_after": {"type": "integer", "minimum": 0, "description": "Unix seconds, inclusive"},
    "created_before": {"type": "integer", "minimum": 0, "description": "Unix seconds, inclusive"},
    "customer": {"type": "string", "pattern": "^cus_[A-Za-z0-9_]+$"}
  },
  "additionalProperties": false
}`

type createRefundArgs struct {
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          *int64 `json:"amount"`
	Reason          string `json:"reason"`
}

type getPaymentArgs struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

type listPaymentsArgs struct {
	Limit         int    `json:"limit"`
	CreatedAfter  *int64 `json:"created_after"`
	CreatedBefore *int64 `json:"created_before"`
	Customer      string `json:"customer"`
}

// PaymentList is the answer of list_payments
type PaymentList struct {
	Count    int                `json:"count"`
	Payments []*payment.Payment `json:"payments"`
}

// PaymentTools returns the catalog of the payment tool server
func PaymentTools(provider PaymentProvider) []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "create_refund",
			Description: "Refund a payment intent. Omit amount to refund the full payment.",
			InputSchema: createRefundSchema,
			Handler: mcp.Handle(func(ctx context.Context, in createRefundArgs) (any, error) {
				return provider.CreateRefund(ctx, payment.RefundInput{
					PaymentIntentID: in.PaymentIntentID,
					Amount:          in.Amount,
					Reason:          payment.RefundReason(in.Reason),
				})
			}),
		},
		{
			Name:        "get_payment",
			Description: "Retrieve a payment intent with its formatted amount and status.",
			InputSchema: getPaymentSchema,
			Handler: mcp.Handle(func(ctx context.Context, in getPaymentArgs) (any, error) {
				return provider.GetPayment(ctx, in.PaymentIntentID)
			}),
		},
		{
			Name:        "list_payments",
			Description: "List payment intents newest first, optionally filtered by creation time and customer.",
			InputSchema: listPaymentsSchema,
			Handler: mcp.Handle(func(ctx context.Context, in listPaymentsArgs) (any, error) {
				payments, err := provider.ListPayments(ctx, payment.ListInput{
					Limit:         in.Limit,
					CreatedAfter:  in.CreatedAfter,
					CreatedBefore: in.CreatedBefore,
					CustomerID:    in.Customer,
				})
				if err != nil {
					return nil, err
				}
				return PaymentList{Count: len(payments), Payments: payments}, nil
			}),
		},
	}
}
