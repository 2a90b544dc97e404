package order

import "strings"

// OrderStatus represents the fulfilment state of a storefront order
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// ParseOrderStatus accepts any letter case and the US spelling "canceled".
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if s == "CANCELED" {
		s = StatusCancelled
	}
	if !s.IsValid() {
		return "", false
	}
	return s, true
}
