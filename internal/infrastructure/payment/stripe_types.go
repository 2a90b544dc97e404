package payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RefundReason is the reason code sent with a refund
type RefundReason string

const (
	RefundReasonDuplicate           RefundReason = "duplicate"
	RefundReasonFraudulent          RefundReason = "fraudulent"
	RefundReasonRequestedByCustomer RefundReason = "requested_by_customer"
)

// IsValid reports whether r is a reason the provider accepts
func (r RefundReason) IsValid() bool {
	switch r {
	case RefundReasonDuplicate, RefundReasonFraudulent, RefundReasonRequestedByCustomer:
		return true
	}
	return false
}

// Payment is a payment intent as shown to admins
type Payment struct {
	ID              string            `json:"id"`
	Amount          int64             `json:"amount"`
	AmountFormatted string            `json:"amount_formatted"`
	AmountReceived  int64             `json:"amount_received"`
	Currency        string            `json:"currency"`
	Status          string            `json:"status"`
	CustomerID      string            `json:"customer_id,omitempty"`
	Description     string            `json:"description,omitempty"`
	ReceiptEmail    string            `json:"receipt_email,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Created         time.Time         `json:"created"`
}

// Refund is the result of a refund request
type Refund struct {
	ID              string    `json:"id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	Amount          int64     `json:"amount"`
	AmountFormatted string    `json:"amount_formatted"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	Reason          string    `json:"reason,omitempty"`
	Created         time.Time `json:"created"`
}

// RefundInput describes a refund. A nil Amount refunds the full payment.
type RefundInput struct {
	PaymentIntentID string
	Amount          *int64
	Reason          RefundReason
}

// ListInput filters a payment listing. Times are unix seconds.
type ListInput struct {
	Limit         int
	CreatedAfter  *int64
	CreatedBefore *int64
	CustomerID    string
}

// zeroDecimalCurrencies have no minor unit
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true,
	"KRW": true, "MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// FormatAmount renders an amount in minor units with its upper-cased
// currency, e.g. 4900 usd becomes "49.00 USD".
func FormatAmount(minor int64, currency string) string {
	currency = strings.ToUpper(currency)
	if zeroDecimalCurrencies[currency] {
		return decimal.NewFromInt(minor).String() + " " + currency
	}
	return decimal.New(minor, -2).StringFixed(2) + " " + currency
}
