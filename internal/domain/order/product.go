package order

import "github.com/shopspring/decimal"

// Product is a catalog entry
type Product struct {
	ID        string
	Name      string
	Slug      string
	BasePrice decimal.Decimal
}

// ProductVariant is a purchasable size of a product with its own stock
type ProductVariant struct {
	ID          string
	ProductID   string
	ProductName string
	Size        string
	Stock       int
	Price       decimal.Decimal
}

// IsOutOfStock reports stock == 0
func (v ProductVariant) IsOutOfStock() bool {
	return v.Stock == 0
}

// IsLowStock reports stock at or below threshold
func (v ProductVariant) IsLowStock(threshold int) bool {
	return v.Stock <= threshold
}
