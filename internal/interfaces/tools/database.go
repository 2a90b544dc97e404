// Package tools declares the tool catalogs served by the stdio tool servers.
// Each catalog binds JSON Schema argument declarations to an application or
// infrastructure collaborator.
package tools

import (
	"context"

	"github.com/MuratKus/burbarshop/internal/application/analytics"
	"github.com/MuratKus/burbarshop/internal/infrastructure/mcp"
)

// Analytics is the read side the database tools report on
type Analytics interface {
	SalesSummary(ctx context.Context, days int) (*analytics.SalesSummary, error)
	Inventory(ctx context.Context, threshold int) (*analytics.InventoryReport, error)
	CustomerStats(ctx context.Context, days int) (*analytics.CustomerStats, error)
	ProductPerformance(ctx context.Context, days, limit int) ([]analytics.ProductSales, error)
	OrderTrends(ctx context.Context, days int) (*analytics.OrderTrends, error)
}

const daysSchema = `{
  "type": "object",
  "properties": {
    "days": {"type": "integer", "minimum": 1, "maximum": 365, "default": 30, "description": "Trailing window in days"}
  },
  "additionalProperties": false
}`

const inventorySchema = `{
  "type": "object",
  "properties": {
    "low_stock_threshold": {"type": "integer", "minimum": 0, "maximum": 1000, "default": 5, "description": "Variants with stock at or below this are low"}
  },
  "additionalProperties": false
}`

const productPerformanceSchema = `{
  "type": "object",
  "properties": {
    "days": {"type": "integer", "minimum": 1, "maximum": 365, "default": 30, "description": "Trailing window in days"},
    "limit": {"type": "integer", "minimum": 1, "maximum": 50, "default": 10, "description": "Number of products to return"}
  },
  "additionalProperties": false
}`

type daysArgs struct {
	Days int `json:"days"`
}

type inventoryArgs struct {
	LowStockThreshold int `json:"low_stock_threshold"`
}

type productPerformanceArgs struct {
	Days  int `json:"days"`
	Limit int `json:"limit"`
}

// ProductPerformanceReport wraps the ranking with its window
type ProductPerformanceReport struct {
	Days     int                      `json:"days"`
	Limit    int                      `json:"limit"`
	Products []analytics.ProductSales `json:"products"`
}

// DatabaseTools returns the catalog of the database tool server
func DatabaseTools(svc Analytics) []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "get_sales_analytics",
			Description: "Revenue, order count and average order value over the last N days. Cancelled orders are excluded.",
			InputSchema: daysSchema,
			Handler: mcp.Handle(func(ctx context.Context, in daysArgs) (any, error) {
				return svc.SalesSummary(ctx, in.Days)
			}),
		},
		{
			Name:        "check_inventory",
			Description: "Variants at or below the low stock threshold and variants that are out of stock.",
			InputSchema: inventorySchema,
			Handler: mcp.Handle(func(ctx context.Context, in inventoryArgs) (any, error) {
				return svc.Inventory(ctx, in.LowStockThreshold)
			}),
		},
		{
			Name:        "get_customer_stats",
			Description: "Unique customers, total orders and orders per customer over the last N days.",
			InputSchema: daysSchema,
			Handler: mcp.Handle(func(ctx context.Context, in daysArgs) (any, error) {
				return svc.CustomerStats(ctx, in.Days)
			}),
		},
		{
			Name:        "get_product_performance",
			Description: "Products ranked by revenue over the last N days, with quantity sold.",
			InputSchema: productPerformanceSchema,
			Handler: mcp.Handle(func(ctx context.Context, in productPerformanceArgs) (any, error) {
				products, err := svc.ProductPerformance(ctx, in.Days, in.Limit)
				if err != nil {
					return nil, err
				}
				return ProductPerformanceReport{Days: in.Days, Limit: in.Limit, Products: products}, nil
			}),
		},
		{
			Name:        "get_order_trends",
			Description: "Orders by weekday and hour (UTC), busiest day and hour, status breakdown and completion rate.",
			InputSchema: daysSchema,
			Handler: mcp.Handle(func(ctx context.Context, in daysArgs) (any, error) {
				return svc.OrderTrends(ctx, in.Days)
			}),
		},
	}
}
