// Package analytics computes the read-only store reports shared by the admin
// chat and the database tool server. Each report does one bulk fetch and
// reduces in memory.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/MuratKus/burbarshop/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// DefaultWindowDays is the trailing window used when a caller gives none
	DefaultWindowDays = 30
	// MaxWindowDays bounds every trailing window
	MaxWindowDays = 365
	// DefaultLowStockThreshold is the stock level at or below which a variant is low
	DefaultLowStockThreshold = 5
)

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service computes sales, inventory, customer and trend reports
type Service struct {
	orders   order.OrderRepository
	variants order.VariantRepository
	now      func() time.Time
}

// NewService creates a new analytics Service
func NewService(orders order.OrderRepository, variants order.VariantRepository, opts ...Option) *Service {
	s := &Service{
		orders:   orders,
		variants: variants,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) windowStart(days int) (time.Time, error) {
	if days < 1 || days > MaxWindowDays {
		return time.Time{}, shared.NewDomainErrorf("INVALID_INPUT", "days must be between 1 and %d", MaxWindowDays)
	}
	return s.now().UTC().AddDate(0, 0, -days), nil
}

// SalesSummary is revenue over a trailing window, cancelled orders excluded
type SalesSummary struct {
	Days              int             `json:"days"`
	Since             time.Time       `json:"since"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	OrderCount        int             `json:"order_count"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// SalesSummary sums order totals over the last days days
func (s *Service) SalesSummary(ctx context.Context, days int) (*SalesSummary, error) {
	since, err := s.windowStart(days)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.FindPlacedSince(ctx, since, order.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return &SalesSummary{
		Days:              days,
		Since:             since,
		TotalRevenue:      total,
		OrderCount:        len(orders),
		AverageOrderValue: average(total, len(orders)),
	}, nil
}

// StockItem is one variant in an inventory report
type StockItem struct {
	VariantID   string          `json:"variant_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	Stock       int             `json:"stock"`
	Price       decimal.Decimal `json:"price"`
}

// InventoryReport partitions variants by stock level. Out-of-stock variants
// appear in both lists.
type InventoryReport struct {
	Threshold       int         `json:"threshold"`
	TotalVariants   int         `json:"total_variants"`
	LowStockCount   int         `json:"low_stock_count"`
	OutOfStockCount int         `json:"out_of_stock_count"`
	LowStock        []StockItem `json:"low_stock_items"`
	OutOfStock      []StockItem `json:"out_of_stock_items"`
}

// Inventory loads every variant and reports those at or below threshold
func (s *Service) Inventory(ctx context.Context, threshold int) (*InventoryReport, error) {
	if threshold < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "threshold cannot be negative")
	}
	variants, err := s.variants.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}

	report := &InventoryReport{
		Threshold:     threshold,
		TotalVariants: len(variants),
		LowStock:      []StockItem{},
		OutOfStock:    []StockItem{},
	}
	for _, v := range variants {
		item := StockItem{
			VariantID:   v.ID,
			ProductID:   v.ProductID,
			ProductName: v.ProductName,
			Size:        v.Size,
			Stock:       v.Stock,
			Price:       v.Price,
		}
		if v.IsLowStock(threshold) {
			report.LowStock = append(report.LowStock, item)
		}
		if v.IsOutOfStock() {
			report.OutOfStock = append(report.OutOfStock, item)
		}
	}
	report.LowStockCount = len(report.LowStock)
	report.OutOfStockCount = len(report.OutOfStock)
	return report, nil
}

// CustomerStats counts customers by email over a trailing window
type CustomerStats struct {
	Days                     int             `json:"days"`
	Since                    time.Time       `json:"since"`
	UniqueCustomers          int             `json:"unique_customers"`
	TotalOrders              int             `json:"total_orders"`
	AverageOrdersPerCustomer decimal.Decimal `json:"average_orders_per_customer"`
}

// CustomerStats counts distinct emails and orders over the last days days.
// Emails are compared case-insensitively.
func (s *Service) CustomerStats(ctx context.Context, days int) (*CustomerStats, error) {
	since, err := s.windowStart(days)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.FindPlacedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	customers := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		customers[strings.ToLower(strings.TrimSpace(o.Email))] = struct{}{}
	}

	stats := &CustomerStats{
		Days:                     days,
		Since:                    since,
		UniqueCustomers:          len(customers),
		TotalOrders:              len(orders),
		AverageOrdersPerCustomer: decimal.Zero,
	}
	if stats.UniqueCustomers > 0 {
		stats.AverageOrdersPerCustomer = decimal.NewFromInt(int64(stats.TotalOrders)).
			DivRound(decimal.NewFromInt(int64(stats.UniqueCustomers)), 2)
	}
	return stats, nil
}

// ProductSales is one product's sold quantity and revenue
type ProductSales struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	OrderCount   int             `json:"order_count"`
}

// ProductPerformance ranks products by revenue over the last days days,
// cancelled orders excluded. Ties are ordered by product name.
func (s *Service) ProductPerformance(ctx context.Context, days, limit int) ([]ProductSales, error) {
	since, err := s.windowStart(days)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "limit must be at least 1")
	}
	orders, err := s.orders.FindPlacedSince(ctx, since, order.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	byProduct := make(map[string]*ProductSales)
	for _, o := range orders {
		seen := make(map[string]bool)
		for _, item := range o.Items {
			ps, ok := byProduct[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, ProductName: item.ProductName}
				byProduct[item.ProductID] = ps
			}
			ps.QuantitySold += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.LineTotal())
			if !seen[item.ProductID] {
				ps.OrderCount++
				seen[item.ProductID] = true
			}
		}
	}

	ranked := make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		ranked = append(ranked, *ps)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Revenue.Cmp(ranked[j].Revenue); c != 0 {
			return c > 0
		}
		if ranked[i].ProductName != ranked[j].ProductName {
			return ranked[i].ProductName < ranked[j].ProductName
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(count)), 2)
}
