package order

import (
	"context"
	"time"
)

// OrderFilter narrows a recent-orders listing
type OrderFilter struct {
	Status *OrderStatus
	Limit  int
}

// OrderRepository is the order store used by the admin surface.
// Every finder loads the order lines.
type OrderRepository interface {
	// FindRecent returns orders newest first
	FindRecent(ctx context.Context, filter OrderFilter) ([]Order, error)
	// FindByID returns shared.ErrNotFound when no order has exactly this id
	FindByID(ctx context.Context, id string) (*Order, error)
	// FindByIDSuffix matches ids ending with suffix, ignoring case
	FindByIDSuffix(ctx context.Context, suffix string, limit int) ([]Order, error)
	// FindPlacedSince returns orders created at or after since, minus the excluded statuses
	FindPlacedSince(ctx context.Context, since time.Time, exclude ...OrderStatus) ([]Order, error)
	Save(ctx context.Context, o *Order) error
}

// VariantRepository reads product variants with their product names
type VariantRepository interface {
	FindAll(ctx context.Context) ([]ProductVariant, error)
}
