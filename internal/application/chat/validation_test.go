package chat

import (
	"errors"
	"testing"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/MuratKus/burbarshop/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	pending := order.StatusPending
	bogus := order.OrderStatus("LOST")

	tests := []struct {
		name       string
		cmd        Command
		wantFields []string
	}{
		{name: "all orders", cmd: GetOrders(nil)},
		{name: "filtered orders", cmd: GetOrders(&pending)},
		{name: "unknown status filter", cmd: GetOrders(&bogus), wantFields: []string{"status"}},
		{name: "update order", cmd: UpdateOrder("A1B2C3D4", order.StatusShipped)},
		{name: "update order with short id and bad status", cmd: UpdateOrder("A1B2", "LOST"), wantFields: []string{"orderId", "status"}},
		{name: "update order with punctuation in id", cmd: UpdateOrder("A1B2-C3D4", order.StatusShipped), wantFields: []string{"orderId"}},
		{name: "ship order", cmd: ShipOrder("A1B2C3D4", "1Z999AA10123456784")},
		{name: "ship order with blank tracking", cmd: ShipOrder("A1B2C3D4", "   "), wantFields: []string{"trackingNumber"}},
		{name: "sales window", cmd: SalesAnalytics(7)},
		{name: "sales window too long", cmd: SalesAnalytics(400), wantFields: []string{"days"}},
		{name: "sales window zero", cmd: SalesAnalytics(0), wantFields: []string{"days"}},
		{name: "payment lookup", cmd: LookupPayment("pi_3MtwBwLkdIwHu7ix28a3tqPa")},
		{name: "payment lookup without prefix", cmd: LookupPayment("ch_123456"), wantFields: []string{"paymentId"}},
		{name: "parameterless commands", cmd: CheckInventory()},
		{name: "unknown", cmd: Unknown()},
		{name: "unrecognised kind", cmd: Command{Kind: "refund_everything"}, wantFields: []string{"kind"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cmd)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *shared.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))

			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestValidate_MessagesNameTheRule(t *testing.T) {
	err := Validate(SalesAnalytics(400))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "- days: Must be at most 365")

	err = Validate(LookupPayment("ch_1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "- paymentId: Must start with pi_")
}
