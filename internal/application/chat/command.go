// Package chat turns free-text admin messages into typed commands and runs
// them against the store.
package chat

import (
	"github.com/MuratKus/burbarshop/internal/domain/order"
)

// Kind names the operation a Command asks for
type Kind string

const (
	KindGetOrders          Kind = "get_orders"
	KindUpdateOrder        Kind = "update_order"
	KindShipOrder          Kind = "ship_order"
	KindCheckInventory     Kind = "check_inventory"
	KindSalesAnalytics     Kind = "sales_analytics"
	KindProductPerformance Kind = "product_performance"
	KindCustomerStats      Kind = "customer_stats"
	KindLookupPayment      Kind = "lookup_payment"
	KindUnknown            Kind = "unknown"
)

// String returns the kind name
func (k Kind) String() string {
	return string(k)
}

// Command is a parsed admin request. Only the fields of its Kind are set:
//
//	get_orders          Status (nil means all statuses)
//	update_order        OrderID, NewStatus
//	ship_order          OrderID, TrackingNumber
//	sales_analytics     Days
//	lookup_payment      PaymentID
type Command struct {
	Kind           Kind
	Status         *order.OrderStatus
	OrderID        string
	NewStatus      order.OrderStatus
	TrackingNumber string
	Days           int
	PaymentID      string
}

// GetOrders lists recent orders, optionally with one status
func GetOrders(status *order.OrderStatus) Command {
	return Command{Kind: KindGetOrders, Status: status}
}

// UpdateOrder sets the status of an order
func UpdateOrder(orderID string, status order.OrderStatus) Command {
	return Command{Kind: KindUpdateOrder, OrderID: orderID, NewStatus: status}
}

// ShipOrder ships an order with a tracking number
func ShipOrder(orderID, trackingNumber string) Command {
	return Command{Kind: KindShipOrder, OrderID: orderID, TrackingNumber: trackingNumber}
}

// CheckInventory reports low and out-of-stock variants
func CheckInventory() Command {
	return Command{Kind: KindCheckInventory}
}

// SalesAnalytics summarises revenue over the last days days
func SalesAnalytics(days int) Command {
	return Command{Kind: KindSalesAnalytics, Days: days}
}

// ProductPerformance ranks the best selling products
func ProductPerformance() Command {
	return Command{Kind: KindProductPerformance}
}

// CustomerStats counts customers and orders
func CustomerStats() Command {
	return Command{Kind: KindCustomerStats}
}

// LookupPayment fetches a payment intent
func LookupPayment(paymentID string) Command {
	return Command{Kind: KindLookupPayment, PaymentID: paymentID}
}

// Unknown is the fallback for messages no rule understood
func Unknown() Command {
	return Command{Kind: KindUnknown}
}
