package chat

import (
	"testing"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(s order.OrderStatus) *order.OrderStatus {
	return &s
}

func TestParser_Parse(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name    string
		message string
		want    Command
	}{
		{"pending orders", "show pending orders", GetOrders(statusPtr(order.StatusPending))},
		{"all orders has no filter", "show all orders", GetOrders(nil)},
		{"all orders wins over a status word", "list all orders, even shipped", GetOrders(nil)},
		{"recent orders phrase", "recent orders please", GetOrders(nil)},
		{"us spelling of cancelled", "Show canceled orders", GetOrders(statusPtr(order.StatusCancelled))},
		{"delivered filter", "  LIST   delivered orders ", GetOrders(statusPtr(order.StatusDelivered))},
		{"update order", "update order #a1b2c3d4 to shipped", UpdateOrder("A1B2C3D4", order.StatusShipped)},
		{"update without hash", "Update order a1b2c3d4 to Processing", UpdateOrder("A1B2C3D4", order.StatusProcessing)},
		{"update with invalid status falls through", "update order #a1b2c3d4 to refunded", Unknown()},
		{"ship order keeps tracking case", "ship order #a1b2c3d4 with tracking 1Z999AA1", ShipOrder("A1B2C3D4", "1Z999AA1")},
		{"ship order tracking number", "Ship order #abc12345 with tracking number Ab-12 x", ShipOrder("ABC12345", "Ab-12 x")},
		{"ship without tracking falls through", "ship order #abc12345 with tracking", Unknown()},
		{"update order with polite prefix", "please update order #a1b2c3d4 to shipped", UpdateOrder("A1B2C3D4", order.StatusShipped)},
		{"update order with trailing words", "update order #a1b2c3d4 to shipped please", UpdateOrder("A1B2C3D4", order.StatusShipped)},
		{"ship order with polite prefix", "please ship order #abc12345 with tracking 1Z9", ShipOrder("ABC12345", "1Z9")},
		{"revenue of top products", "top products by revenue", ProductPerformance()},
		{"sales orders listing", "show sales orders", GetOrders(nil)},
		{"inventory", "check inventory", CheckInventory()},
		{"stock", "what is low on stock?", CheckInventory()},
		{"sales default window", "show me sales analytics", SalesAnalytics(30)},
		{"sales last n days", "Revenue for the last 7 days", SalesAnalytics(7)},
		{"sales last 1 day", "earnings last 1 day", SalesAnalytics(1)},
		{"best selling", "best selling products", ProductPerformance()},
		{"best-sellers", "what are our best-sellers", ProductPerformance()},
		{"top products", "top products", ProductPerformance()},
		{"customer stats", "customer stats", CustomerStats()},
		{"how many customers", "how many customers do we have", CustomerStats()},
		{"payment keeps id case", "payment pi_3MtwBwLkdIwHu7ix", LookupPayment("pi_3MtwBwLkdIwHu7ix")},
		{"payment with other prefix", "payment ch_123", Unknown()},
		{"greeting", "hello there", Unknown()},
		{"empty", "   ", Unknown()},
		{"customers without stats word", "email the customers", Unknown()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(tt.message))
		})
	}
}

func TestParser_CanonicalPhrasesMatchOneRule(t *testing.T) {
	p := NewParser()

	canonical := map[string]Kind{
		"show pending orders":                          KindGetOrders,
		"show all orders":                              KindGetOrders,
		"update order #a1b2c3d4 to shipped":            KindUpdateOrder,
		"ship order #a1b2c3d4 with tracking 1Z999AA1":  KindShipOrder,
		"check inventory":                              KindCheckInventory,
		"sales analytics for the last 7 days":          KindSalesAnalytics,
		"best selling products":                        KindProductPerformance,
		"product performance":                          KindProductPerformance,
		"customer stats":                               KindCustomerStats,
		"payment pi_3MtwBwLkdIwHu7ix28a3tqPa":          KindLookupPayment,
		"show me the revenue":                          KindSalesAnalytics,
		"ship order #a1b2c3d4 with tracking 1Z shipped": KindShipOrder,
		"top products by revenue":                      KindProductPerformance,
		"show sales orders":                            KindGetOrders,
		"customer revenue summary":                     KindCustomerStats,
	}
	for msg, kind := range canonical {
		t.Run(msg, func(t *testing.T) {
			assert.Equal(t, []Kind{kind}, p.Matches(msg))
			assert.Equal(t, kind, p.Parse(msg).Kind)
		})
	}
}

func TestParser_FirstRuleWins(t *testing.T) {
	p := NewParser()

	// both the listing and the inventory rule accept this message
	msg := "show orders and stock"
	require.Equal(t, []Kind{KindGetOrders, KindCheckInventory}, p.Matches(msg))
	assert.Equal(t, KindGetOrders, p.Parse(msg).Kind)
}

func TestParser_NeverEmitsIncompleteCommands(t *testing.T) {
	p := NewParser()

	messages := []string{
		"update order # to shipped",
		"update order #a1b2c3d4 to",
		"ship order with tracking 123",
		"ship order #abc12345 with tracking number",
		"ship order #abc12345 with tracking no",
		"ship order #abc12345 with tracking no.",
		"payment pi_",
		"payment",
	}
	for _, msg := range messages {
		t.Run(msg, func(t *testing.T) {
			cmd := p.Parse(msg)
			assert.Equal(t, KindUnknown, cmd.Kind)
			assert.Equal(t, Unknown(), cmd)
		})
	}
}
