package order

import (
	"strings"
	"time"

	"github.com/MuratKus/burbarshop/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ShortIDLength is the number of trailing id characters shown to admins
const ShortIDLength = 8

// Order is a placed storefront order
type Order struct {
	ID              string
	Email           string
	CustomerName    string
	Status          OrderStatus
	Subtotal        decimal.Decimal
	ShippingCost    decimal.Decimal
	Total           decimal.Decimal
	TrackingNumber  string
	ShippedAt       *time.Time
	PaymentIntentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []OrderItem
}

// OrderItem is one purchased line of an order
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	VariantID   string
	Quantity    int
	Price       decimal.Decimal
	ProductName string
	VariantSize string
}

// LineTotal returns price * quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShortID returns the last eight characters of id, upper-cased.
// Shorter ids are returned whole.
func ShortID(id string) string {
	if len(id) > ShortIDLength {
		id = id[len(id)-ShortIDLength:]
	}
	return strings.ToUpper(id)
}

// DisplayID returns the admin-facing form "#" + short id
func DisplayID(id string) string {
	return "#" + ShortID(id)
}

// ShortID returns the order's short id
func (o *Order) ShortID() string {
	return ShortID(o.ID)
}

// ItemCount returns the number of units ordered, summed over all lines
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// ChangeStatus overwrites the status. Setting the current status again is
// allowed and leaves the order in the same state.
func (o *Order) ChangeStatus(status OrderStatus, now time.Time) error {
	if !status.IsValid() {
		return shared.NewDomainErrorf("INVALID_STATUS", "Invalid order status: %s", status)
	}
	o.Status = status
	o.UpdatedAt = now
	return nil
}

// MarkShipped records the tracking number and moves the order to SHIPPED
func (o *Order) MarkShipped(trackingNumber string, now time.Time) error {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return shared.NewDomainError("TRACKING_REQUIRED", "Tracking number is required to ship an order")
	}
	o.Status = StatusShipped
	o.TrackingNumber = trackingNumber
	shippedAt := now
	o.ShippedAt = &shippedAt
	o.UpdatedAt = now
	return nil
}
