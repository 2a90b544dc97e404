package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MuratKus/burbarshop/internal/application/analytics"
	ordersvc "github.com/MuratKus/burbarshop/internal/application/order"
	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/MuratKus/burbarshop/internal/domain/shared"
	"github.com/MuratKus/burbarshop/internal/infrastructure/payment"
	"github.com/MuratKus/burbarshop/internal/infrastructure/persistence"
	"github.com/MuratKus/burbarshop/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

// MockNotifier is a mock implementation of ordersvc.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyShipped(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockPaymentLookup is a mock implementation of PaymentLookup
type MockPaymentLookup struct {
	mock.Mock
}

func (m *MockPaymentLookup) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

// panickingAnalytics blows up on every report
type panickingAnalytics struct {
	Analytics
}

func (panickingAnalytics) Inventory(context.Context, int) (*analytics.InventoryReport, error) {
	panic("inventory table is gone")
}

type executorEnv struct {
	exec     *Executor
	fx       *testutil.Fixtures
	db       *gorm.DB
	notifier *MockNotifier
	payments *MockPaymentLookup
	repo     order.OrderRepository
}

func newExecutorEnv(t *testing.T, logger *zap.Logger) *executorEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	repo := persistence.NewGormOrderRepository(db)
	notifier := new(MockNotifier)
	payments := new(MockPaymentLookup)

	orders := ordersvc.NewService(repo, notifier, logger)
	stats := analytics.NewService(repo, persistence.NewGormVariantRepository(db))
	return &executorEnv{
		exec:     NewExecutor(orders, stats, payments, logger),
		fx:       testutil.NewFixtures(t, db),
		db:       db,
		notifier: notifier,
		payments: payments,
		repo:     repo,
	}
}

func TestExecutor_GetOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("lists at most ten orders of a status", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		for i := 0; i < 12; i++ {
			env.fx.Order(testutil.OrderSpec{Status: order.StatusPending, Total: "20.00", CreatedAt: testutil.DaysAgo(i)})
		}
		env.fx.Order(testutil.OrderSpec{Status: order.StatusShipped, Total: "5.00"})

		res := env.exec.Execute(ctx, NewParser().Parse("show pending orders"))

		assert.Contains(t, res.ResponseText, "Found 10 PENDING orders:")
		items, ok := res.Data.([]OrderSummary)
		require.True(t, ok)
		require.Len(t, items, 10)
		for _, it := range items {
			assert.Equal(t, order.StatusPending, it.Status)
			assert.Len(t, it.ID, order.ShortIDLength)
			assert.Equal(t, "20.00", it.Total)
			assert.Equal(t, "buyer@example.com", it.Email)
		}
		assert.True(t, items[0].Created.After(items[9].Created))
	})

	t.Run("empty listing is a normal answer", func(t *testing.T) {
		env := newExecutorEnv(t, nil)

		res := env.exec.Execute(ctx, GetOrders(statusPtr(order.StatusShipped)))

		assert.Equal(t, "No SHIPPED orders found.", res.ResponseText)
		assert.Equal(t, []OrderSummary{}, res.Data)
	})

	t.Run("unfiltered listing counts items", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		p := env.fx.Product("Barber Cape", "35.00")
		v := env.fx.Variant(p, "M", 4)
		env.fx.Order(testutil.OrderSpec{
			Total: "70.00",
			Lines: []testutil.Line{{Variant: v, Quantity: 2, Price: "35.00"}},
		})

		res := env.exec.Execute(ctx, GetOrders(nil))

		assert.Contains(t, res.ResponseText, "Found 1 orders:")
		assert.Contains(t, res.ResponseText, "(2 items)")
		items := res.Data.([]OrderSummary)
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Items)
	})
}

func TestExecutor_UpdateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown short id is not found", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		env.fx.Order(testutil.OrderSpec{ID: "clx9k2mzffffffff"})

		res := env.exec.Execute(ctx, NewParser().Parse("update order #a1b2c3d4 to shipped"))

		assert.Equal(t, Result{ResponseText: "Order #A1B2C3D4 not found."}, res)
		assert.Nil(t, res.Data)
	})

	t.Run("updates the order a short id points to", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		env.fx.Order(testutil.OrderSpec{ID: "clx9k2mza1b2c3d4", Status: order.StatusPending})

		res := env.exec.Execute(ctx, NewParser().Parse("update order #A1B2C3D4 to delivered"))

		assert.Equal(t, "Order #A1B2C3D4 updated to DELIVERED.", res.ResponseText)
		stored, err := env.repo.FindByID(ctx, "clx9k2mza1b2c3d4")
		require.NoError(t, err)
		assert.Equal(t, order.StatusDelivered, stored.Status)

		again := env.exec.Execute(ctx, UpdateOrder("A1B2C3D4", order.StatusDelivered))
		assert.Equal(t, res.ResponseText, again.ResponseText)
	})

	t.Run("ambiguous short id fails loudly", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		env.fx.Order(testutil.OrderSpec{ID: "aaaaaaaaa1b2c3d4"})
		env.fx.Order(testutil.OrderSpec{ID: "bbbbbbbba1b2c3d4"})

		res := env.exec.Execute(ctx, UpdateOrder("A1B2C3D4", order.StatusShipped))

		assert.Equal(t, "Order #A1B2C3D4 matches 2 orders; use the full order id.", res.ResponseText)
		assert.Nil(t, res.Data)
	})

	t.Run("invalid id is rejected before any lookup", func(t *testing.T) {
		env := newExecutorEnv(t, nil)

		res := env.exec.Execute(ctx, UpdateOrder("A1-B2", order.OrderStatus("LOST")))

		assert.Contains(t, res.ResponseText, "Invalid input:")
		assert.Contains(t, res.ResponseText, "- orderId: Must be alphanumeric")
		assert.Contains(t, res.ResponseText, "- status: Must be one of:")
		fields, ok := res.Data.([]shared.FieldViolation)
		require.True(t, ok)
		assert.Len(t, fields, 2)
	})
}

func TestExecutor_ShipOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("unresolved order never sends email", func(t *testing.T) {
		env := newExecutorEnv(t, nil)

		res := env.exec.Execute(ctx, ShipOrder("A1B2C3D4", "1Z999"))

		assert.Equal(t, Result{ResponseText: "Order #A1B2C3D4 not found."}, res)
		env.notifier.AssertNotCalled(t, "NotifyShipped", mock.Anything, mock.Anything)
	})

	t.Run("ships and emails the customer", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		env.fx.Order(testutil.OrderSpec{ID: "clx9k2mza1b2c3d4", Email: "sam@example.com"})
		env.notifier.On("NotifyShipped", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
			return o.TrackingNumber == "1Z999AA1" && o.Status == order.StatusShipped
		})).Return(nil).Once()

		res := env.exec.Execute(ctx, NewParser().Parse("ship order #a1b2c3d4 with tracking 1Z999AA1"))

		assert.Equal(t, "Order #A1B2C3D4 marked as SHIPPED with tracking 1Z999AA1. Shipping confirmation sent to sam@example.com.", res.ResponseText)
		data := res.Data.(ShipmentData)
		assert.True(t, data.EmailSent)
		assert.Empty(t, data.EmailError)
		env.notifier.AssertExpectations(t)

		stored, err := env.repo.FindByID(ctx, "clx9k2mza1b2c3d4")
		require.NoError(t, err)
		assert.Equal(t, order.StatusShipped, stored.Status)
		assert.NotNil(t, stored.ShippedAt)
	})

	t.Run("email failure does not fail the shipment", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		env.fx.Order(testutil.OrderSpec{ID: "clx9k2mza1b2c3d4"})
		env.notifier.On("NotifyShipped", mock.Anything, mock.Anything).Return(errors.New("resend: 422")).Once()

		res := env.exec.Execute(ctx, ShipOrder("A1B2C3D4", "TRACK1"))

		assert.Contains(t, res.ResponseText, "marked as SHIPPED")
		assert.Contains(t, res.ResponseText, "Shipping email not sent: resend: 422")
		data := res.Data.(ShipmentData)
		assert.False(t, data.EmailSent)
		assert.Equal(t, "resend: 422", data.EmailError)
	})
}

func TestExecutor_Reports(t *testing.T) {
	ctx := context.Background()

	t.Run("inventory uses the fixed threshold", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		p := env.fx.Product("Beard Oil", "12.00")
		env.fx.Variant(p, "S", 0)
		env.fx.Variant(p, "M", 3)
		env.fx.Variant(p, "L", 5)
		env.fx.Variant(p, "XL", 6)

		res := env.exec.Execute(ctx, CheckInventory())

		report := res.Data.(*analytics.InventoryReport)
		assert.Equal(t, 5, report.Threshold)
		assert.Equal(t, 4, report.TotalVariants)
		assert.Equal(t, 3, report.LowStockCount)
		assert.Equal(t, 1, report.OutOfStockCount)
		assert.Contains(t, res.ResponseText, "Inventory: 4 variants, 3 low stock (5 or fewer), 1 out of stock.")
	})

	t.Run("sales over a window", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		env.fx.Order(testutil.OrderSpec{Total: "30.00", CreatedAt: testutil.DaysAgo(1)})
		env.fx.Order(testutil.OrderSpec{Total: "20.00", CreatedAt: testutil.DaysAgo(3)})
		env.fx.Order(testutil.OrderSpec{Total: "90.00", Status: order.StatusCancelled, CreatedAt: testutil.DaysAgo(2)})

		res := env.exec.Execute(ctx, NewParser().Parse("revenue for the last 7 days"))

		assert.Equal(t, "Sales for the last 7 days: $50.00 revenue from 2 orders (average $25.00).", res.ResponseText)
		summary := res.Data.(*analytics.SalesSummary)
		assert.Equal(t, 2, summary.OrderCount)
	})

	t.Run("sales window out of range is a validation answer", func(t *testing.T) {
		env := newExecutorEnv(t, nil)

		res := env.exec.Execute(ctx, SalesAnalytics(400))

		assert.Equal(t, "Invalid input:\n- days: Must be at most 365", res.ResponseText)
		assert.Equal(t, []shared.FieldViolation{{Field: "days", Message: "Must be at most 365"}}, res.Data)
	})

	t.Run("no product sales", func(t *testing.T) {
		env := newExecutorEnv(t, nil)

		res := env.exec.Execute(ctx, ProductPerformance())

		assert.Equal(t, "No product sales in the last 30 days.", res.ResponseText)
		assert.Equal(t, []analytics.ProductSales{}, res.Data)
	})

	t.Run("top products", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		cape := env.fx.Product("Barber Cape", "35.00")
		comb := env.fx.Product("Comb", "5.00")
		capeM := env.fx.Variant(cape, "M", 10)
		combS := env.fx.Variant(comb, "S", 10)
		env.fx.Order(testutil.OrderSpec{Total: "80.00", CreatedAt: testutil.DaysAgo(1), Lines: []testutil.Line{
			{Variant: capeM, Quantity: 2, Price: "35.00"},
			{Variant: combS, Quantity: 2, Price: "5.00"},
		}})

		res := env.exec.Execute(ctx, ProductPerformance())

		assert.Equal(t, "Top 2 products (last 30 days):\n1. Barber Cape: 2 sold, $70.00\n2. Comb: 2 sold, $10.00", res.ResponseText)
	})

	t.Run("customer stats", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		env.fx.Order(testutil.OrderSpec{Email: "a@example.com", CreatedAt: testutil.DaysAgo(1)})
		env.fx.Order(testutil.OrderSpec{Email: "A@example.com ", CreatedAt: testutil.DaysAgo(2)})
		env.fx.Order(testutil.OrderSpec{Email: "b@example.com", CreatedAt: testutil.DaysAgo(3)})

		res := env.exec.Execute(ctx, CustomerStats())

		assert.Equal(t, "Customers in the last 30 days: 2 unique customers placed 3 orders (1.50 per customer).", res.ResponseText)
	})
}

func TestExecutor_LookupPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("formats the payment", func(t *testing.T) {
		env := newExecutorEnv(t, nil)
		created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		env.payments.On("GetPayment", mock.Anything, "pi_3MtwBw").Return(&payment.Payment{
			ID:              "pi_3MtwBw",
			Amount:          4900,
			AmountFormatted: payment.FormatAmount(4900, "usd"),
			Currency:        "USD",
			Status:          "succeeded",
			Created:         created,
		}, nil).Once()

		res := env.exec.Execute(ctx, NewParser().Parse("payment pi_3MtwBw"))

		assert.Equal(t, "Payment pi_3MtwBw: 49.00 USD, status succeeded, created 2026-05-01T12:00:00Z.", res.ResponseText)
		env.payments.AssertExpectations(t)
	})

	t.Run("provider failure is the operation failure", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		env := newExecutorEnv(t, zap.New(core))
		env.payments.On("GetPayment", mock.Anything, "pi_missing").
			Return(nil, fmt.Errorf("stripe: failed to get payment intent: %w", errors.New("No such payment_intent"))).Once()

		res := env.exec.Execute(ctx, LookupPayment("pi_missing"))

		assert.Equal(t, Result{ResponseText: "Sorry, I encountered an error: stripe: failed to get payment intent: No such payment_intent"}, res)
		assert.Equal(t, 1, logs.FilterMessage("Chat command failed").Len())
	})

	t.Run("no provider configured", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		repo := persistence.NewGormOrderRepository(db)
		exec := NewExecutor(ordersvc.NewService(repo, nil, nil),
			analytics.NewService(repo, persistence.NewGormVariantRepository(db)), nil, nil)

		res := exec.Execute(ctx, LookupPayment("pi_123"))

		assert.Equal(t, "Sorry, I encountered an error: "+payment.ErrNotConfigured.Error(), res.ResponseText)
	})
}

func TestExecutor_Unknown(t *testing.T) {
	env := newExecutorEnv(t, nil)

	res := env.exec.Execute(context.Background(), NewParser().Parse("what's the weather"))

	assert.Equal(t, HelpText, res.ResponseText)
	assert.Nil(t, res.Data)
}

func TestExecutor_RecoversFromPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	exec := NewExecutor(nil, panickingAnalytics{}, nil, zap.New(core))

	var res Result
	require.NotPanics(t, func() {
		res = exec.Execute(context.Background(), CheckInventory())
	})

	assert.Equal(t, Result{ResponseText: "Sorry, I encountered an error: inventory table is gone"}, res)
	assert.Equal(t, 1, logs.FilterMessage("Chat command panicked").Len())
}

func TestExecutor_StoreErrorBecomesApology(t *testing.T) {
	env := newExecutorEnv(t, nil)
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	res := env.exec.Execute(context.Background(), GetOrders(nil))

	assert.Contains(t, res.ResponseText, "Sorry, I encountered an error: ")
	assert.Nil(t, res.Data)
}
