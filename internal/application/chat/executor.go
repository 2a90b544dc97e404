package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MuratKus/burbarshop/internal/application/analytics"
	ordersvc "github.com/MuratKus/burbarshop/internal/application/order"
	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/MuratKus/burbarshop/internal/domain/shared"
	"github.com/MuratKus/burbarshop/internal/infrastructure/payment"
	"github.com/MuratKus/burbarshop/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// RecentOrdersLimit caps a get_orders listing
	RecentOrdersLimit = 10
	// TopProductsLimit caps a product_performance ranking
	TopProductsLimit = 5
	// InventoryThreshold is the fixed low-stock level of check_inventory
	InventoryThreshold = analytics.DefaultLowStockThreshold
)

// HelpText is the answer to messages no rule understood
const HelpText = `I can help with:
- "show pending orders" or "show all orders"
- "update order #A1B2C3D4 to shipped"
- "ship order #A1B2C3D4 with tracking 1Z999AA10123456784"
- "check inventory"
- "sales analytics for the last 7 days"
- "best selling products"
- "customer stats"
- "payment pi_3MtwBwLkdIwHu7ix28a3tqPa"`

// OrderService is the order administration used by the executor
type OrderService interface {
	ListRecent(ctx context.Context, status *order.OrderStatus, limit int) ([]order.Order, error)
	UpdateStatus(ctx context.Context, ref string, status order.OrderStatus) (*order.Order, error)
	Ship(ctx context.Context, ref, trackingNumber string) (*ordersvc.ShipOutcome, error)
}

// Analytics computes the store reports
type Analytics interface {
	SalesSummary(ctx context.Context, days int) (*analytics.SalesSummary, error)
	Inventory(ctx context.Context, threshold int) (*analytics.InventoryReport, error)
	CustomerStats(ctx context.Context, days int) (*analytics.CustomerStats, error)
	ProductPerformance(ctx context.Context, days, limit int) ([]analytics.ProductSales, error)
}

// PaymentLookup retrieves a payment intent
type PaymentLookup interface {
	GetPayment(ctx context.Context, paymentIntentID string) (*payment.Payment, error)
}

// Result is the answer to one admin message
type Result struct {
	ResponseText string `json:"response"`
	Data         any    `json:"data"`
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithExecutorMetrics records one observation per executed command
func WithExecutorMetrics(m *telemetry.OperationMetrics) ExecutorOption {
	return func(e *Executor) {
		e.metrics = m
	}
}

// WithExecutorTracer replaces the global tracer
func WithExecutorTracer(t trace.Tracer) ExecutorOption {
	return func(e *Executor) {
		e.tracer = t
	}
}

// Executor runs parsed commands against the store
type Executor struct {
	orders    OrderService
	analytics Analytics
	payments  PaymentLookup
	logger    *zap.Logger
	tracer    trace.Tracer
	metrics   *telemetry.OperationMetrics
}

// NewExecutor creates an Executor. payments may be nil when no payment
// provider is configured; lookups then fail with a plain message.
func NewExecutor(orders OrderService, stats Analytics, payments PaymentLookup, logger *zap.Logger, opts ...ExecutorOption) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		orders:    orders,
		analytics: stats,
		payments:  payments,
		logger:    logger,
		tracer:    otel.Tracer("burbarshop/chat"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs cmd and shapes the answer. It never returns an error and
// never panics: failures become an apology carrying the error message.
func (e *Executor) Execute(ctx context.Context, cmd Command) (result Result) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "chat.execute",
		trace.WithAttributes(attribute.String("chat.command", cmd.Kind.String())))
	outcome := "ok"

	defer func() {
		if r := recover(); r != nil {
			outcome = "panic"
			e.logger.Error("Chat command panicked",
				zap.String("command", cmd.Kind.String()),
				zap.Any("panic", r),
				zap.Stack("stack"))
			span.SetStatus(codes.Error, "panic")
			result = apology(fmt.Sprint(r))
		}
		e.metrics.Record(ctx, cmd.Kind.String(), outcome, time.Since(start))
		span.SetAttributes(attribute.String("chat.outcome", outcome))
		span.End()
	}()

	if err := Validate(cmd); err != nil {
		outcome = "invalid"
		return e.failure(cmd, err)
	}

	res, err := e.dispatch(ctx, cmd)
	if err != nil {
		outcome = classify(err)
		if outcome == "error" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return e.failure(cmd, err)
	}
	return res
}

func (e *Executor) dispatch(ctx context.Context, cmd Command) (Result, error) {
	switch cmd.Kind {
	case KindGetOrders:
		return e.getOrders(ctx, cmd.Status)
	case KindUpdateOrder:
		return e.updateOrder(ctx, cmd.OrderID, cmd.NewStatus)
	case KindShipOrder:
		return e.shipOrder(ctx, cmd.OrderID, cmd.TrackingNumber)
	case KindCheckInventory:
		return e.checkInventory(ctx)
	case KindSalesAnalytics:
		return e.salesAnalytics(ctx, cmd.Days)
	case KindProductPerformance:
		return e.productPerformance(ctx)
	case KindCustomerStats:
		return e.customerStats(ctx)
	case KindLookupPayment:
		return e.lookupPayment(ctx, cmd.PaymentID)
	default:
		return Result{ResponseText: HelpText}, nil
	}
}

// failure turns an operation error into a Result. Validation and lookup
// errors are ordinary answers; anything else is an apology.
func (e *Executor) failure(cmd Command, err error) Result {
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		return Result{ResponseText: verr.Error(), Data: verr.Fields}
	}
	if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrAmbiguous) || errors.Is(err, shared.ErrInvalidInput) {
		return Result{ResponseText: err.Error()}
	}
	e.logger.Error("Chat command failed",
		zap.String("command", cmd.Kind.String()),
		zap.Error(err))
	return apology(err.Error())
}

func classify(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrAmbiguous):
		return "not_found"
	default:
		return "error"
	}
}

func apology(msg string) Result {
	return Result{ResponseText: "Sorry, I encountered an error: " + msg}
}

// OrderSummary is one order in a get_orders answer
type OrderSummary struct {
	ID      string            `json:"id"`
	Status  order.OrderStatus `json:"status"`
	Email   string            `json:"email"`
	Total   string            `json:"total"`
	Items   int               `json:"items"`
	Created time.Time         `json:"created"`
}

func summarize(o *order.Order) OrderSummary {
	return OrderSummary{
		ID:      o.ShortID(),
		Status:  o.Status,
		Email:   o.Email,
		Total:   o.Total.StringFixed(2),
		Items:   o.ItemCount(),
		Created: o.CreatedAt.UTC(),
	}
}

func (e *Executor) getOrders(ctx context.Context, status *order.OrderStatus) (Result, error) {
	orders, err := e.orders.ListRecent(ctx, status, RecentOrdersLimit)
	if err != nil {
		return Result{}, err
	}
	label := ""
	if status != nil {
		label = status.String() + " "
	}

	items := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		items = append(items, summarize(&orders[i]))
	}
	if len(items) == 0 {
		return Result{ResponseText: fmt.Sprintf("No %sorders found.", label), Data: items}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %sorders:", len(items), label)
	for _, it := range items {
		fmt.Fprintf(&b, "\n#%s - %s - %s - $%s (%d items)", it.ID, it.Status, it.Email, it.Total, it.Items)
	}
	return Result{ResponseText: b.String(), Data: items}, nil
}

func (e *Executor) updateOrder(ctx context.Context, ref string, status order.OrderStatus) (Result, error) {
	o, err := e.orders.UpdateStatus(ctx, ref, status)
	if err != nil {
		return Result{}, err
	}
	return Result{
		ResponseText: fmt.Sprintf("Order #%s updated to %s.", o.ShortID(), o.Status),
		Data:         summarize(o),
	}, nil
}

// ShipmentData is the data of a ship_order answer
type ShipmentData struct {
	Order          OrderSummary `json:"order"`
	TrackingNumber string       `json:"trackingNumber"`
	EmailSent      bool         `json:"emailSent"`
	EmailError     string       `json:"emailError,omitempty"`
}

func (e *Executor) shipOrder(ctx context.Context, ref, tracking string) (Result, error) {
	out, err := e.orders.Ship(ctx, ref, strings.TrimSpace(tracking))
	if err != nil {
		return Result{}, err
	}
	o := out.Order
	text := fmt.Sprintf("Order #%s marked as SHIPPED with tracking %s.", o.ShortID(), o.TrackingNumber)
	if out.EmailSent {
		text += " Shipping confirmation sent to " + o.Email + "."
	} else {
		text += " Shipping email not sent: " + out.EmailError
	}
	return Result{
		ResponseText: text,
		Data: ShipmentData{
			Order:          summarize(o),
			TrackingNumber: o.TrackingNumber,
			EmailSent:      out.EmailSent,
			EmailError:     out.EmailError,
		},
	}, nil
}

func (e *Executor) checkInventory(ctx context.Context) (Result, error) {
	report, err := e.analytics.Inventory(ctx, InventoryThreshold)
	if err != nil {
		return Result{}, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Inventory: %d variants, %d low stock (%d or fewer), %d out of stock.",
		report.TotalVariants, report.LowStockCount, report.Threshold, report.OutOfStockCount)
	for _, it := range report.LowStock {
		fmt.Fprintf(&b, "\n- %s (%s): %d left", it.ProductName, it.Size, it.Stock)
	}
	return Result{ResponseText: b.String(), Data: report}, nil
}

func (e *Executor) salesAnalytics(ctx context.Context, days int) (Result, error) {
	summary, err := e.analytics.SalesSummary(ctx, days)
	if err != nil {
		return Result{}, err
	}
	text := fmt.Sprintf("Sales for the last %d days: $%s revenue from %d orders (average $%s).",
		summary.Days, summary.TotalRevenue.StringFixed(2), summary.OrderCount, summary.AverageOrderValue.StringFixed(2))
	return Result{ResponseText: text, Data: summary}, nil
}

func (e *Executor) productPerformance(ctx context.Context) (Result, error) {
	ranking, err := e.analytics.ProductPerformance(ctx, analytics.DefaultWindowDays, TopProductsLimit)
	if err != nil {
		return Result{}, err
	}
	if len(ranking) == 0 {
		return Result{
			ResponseText: fmt.Sprintf("No product sales in the last %d days.", analytics.DefaultWindowDays),
			Data:         ranking,
		}, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Top %d products (last %d days):", len(ranking), analytics.DefaultWindowDays)
	for i, p := range ranking {
		fmt.Fprintf(&b, "\n%d. %s: %d sold, $%s", i+1, p.ProductName, p.QuantitySold, p.Revenue.StringFixed(2))
	}
	return Result{ResponseText: b.String(), Data: ranking}, nil
}

func (e *Executor) customerStats(ctx context.Context) (Result, error) {
	stats, err := e.analytics.CustomerStats(ctx, analytics.DefaultWindowDays)
	if err != nil {
		return Result{}, err
	}
	text := fmt.Sprintf("Customers in the last %d days: %d unique customers placed %d orders (%s per customer).",
		stats.Days, stats.UniqueCustomers, stats.TotalOrders, stats.AverageOrdersPerCustomer.StringFixed(2))
	return Result{ResponseText: text, Data: stats}, nil
}

func (e *Executor) lookupPayment(ctx context.Context, id string) (Result, error) {
	if e.payments == nil {
		return Result{}, payment.ErrNotConfigured
	}
	p, err := e.payments.GetPayment(ctx, id)
	if err != nil {
		return Result{}, err
	}
	text := fmt.Sprintf("Payment %s: %s, status %s, created %s.",
		p.ID, p.AmountFormatted, p.Status, p.Created.UTC().Format(time.RFC3339))
	return Result{ResponseText: text, Data: p}, nil
}
