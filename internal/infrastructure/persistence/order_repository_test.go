package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/MuratKus/burbarshop/internal/domain/shared"
	"github.com/MuratKus/burbarshop/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOrderRepository_FindRecent(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	product := fx.Product("Linen Shirt", "49.00")
	variant := fx.Variant(product, "M", 10)

	for i := 0; i < 12; i++ {
		status := order.StatusPending
		if i%3 == 0 {
			status = order.StatusShipped
		}
		fx.Order(testutil.OrderSpec{
			Status:    status,
			Total:     "49.00",
			CreatedAt: testutil.DaysAgo(12 - i),
			Lines:     []testutil.Line{{Variant: variant, Quantity: 1, Price: "49.00"}},
		})
	}

	t.Run("limits and orders newest first", func(t *testing.T) {
		orders, err := repo.FindRecent(ctx, order.OrderFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, orders, 10)
		for i := 1; i < len(orders); i++ {
			assert.False(t, orders[i].CreatedAt.After(orders[i-1].CreatedAt))
		}
		require.Len(t, orders[0].Items, 1)
		assert.Equal(t, "Linen Shirt", orders[0].Items[0].ProductName)
		assert.Equal(t, "M", orders[0].Items[0].VariantSize)
	})

	t.Run("filters by status", func(t *testing.T) {
		shipped := order.StatusShipped
		orders, err := repo.FindRecent(ctx, order.OrderFilter{Status: &shipped, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, orders, 4)
		for _, o := range orders {
			assert.Equal(t, order.StatusShipped, o.Status)
		}
	})
}

func TestGormOrderRepository_FindByIDAndSuffix(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	fx.Order(testutil.OrderSpec{ID: "clxq0001a1b2c3d4"})
	fx.Order(testutil.OrderSpec{ID: "clxq0002ffff0000"})
	fx.Order(testutil.OrderSpec{ID: "clxq0003eeee0000"})

	t.Run("exact id", func(t *testing.T) {
		o, err := repo.FindByID(ctx, "clxq0001a1b2c3d4")
		require.NoError(t, err)
		assert.Equal(t, "A1B2C3D4", o.ShortID())
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("suffix match ignores case", func(t *testing.T) {
		orders, err := repo.FindByIDSuffix(ctx, "A1B2C3D4", 2)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "clxq0001a1b2c3d4", orders[0].ID)
	})

	t.Run("suffix shared by two orders", func(t *testing.T) {
		orders, err := repo.FindByIDSuffix(ctx, "0000", 5)
		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		orders, err := repo.FindByIDSuffix(ctx, "%", 5)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestGormOrderRepository_FindPlacedSince(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewGormOrderRepository(db)

	fx.Order(testutil.OrderSpec{Status: order.StatusDelivered, CreatedAt: testutil.DaysAgo(2)})
	fx.Order(testutil.OrderSpec{Status: order.StatusCancelled, CreatedAt: testutil.DaysAgo(3)})
	fx.Order(testutil.OrderSpec{Status: order.StatusPending, CreatedAt: testutil.DaysAgo(40)})

	orders, err := repo.FindPlacedSince(context.Background(), testutil.DaysAgo(30))
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = repo.FindPlacedSince(context.Background(), testutil.DaysAgo(30), order.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.StatusDelivered, orders[0].Status)
}

func TestGormOrderRepository_Save(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	created := fx.Order(testutil.OrderSpec{ID: "ord-save-0001", Total: "80.00", CreatedAt: testutil.DaysAgo(1)})

	o, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, o.MarkShipped("TRACK123", now))
	require.NoError(t, repo.Save(ctx, o))

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, reloaded.Status)
	assert.Equal(t, "TRACK123", reloaded.TrackingNumber)
	require.NotNil(t, reloaded.ShippedAt)
	assert.True(t, reloaded.ShippedAt.Equal(now))
	assert.True(t, reloaded.Total.Equal(created.Total))
	assert.WithinDuration(t, created.CreatedAt, reloaded.CreatedAt, time.Second)

	t.Run("saving a missing order reports not found", func(t *testing.T) {
		err := repo.Save(ctx, &order.Order{ID: "ghost", Status: order.StatusPending, UpdatedAt: now})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	variant := fx.Variant(fx.Product("Wool Scarf", "35.00"), "One Size", 4)

	o := &order.Order{
		Email:  "new@example.com",
		Status: order.StatusPending,
		Items: []order.OrderItem{{
			ProductID: variant.ProductID,
			VariantID: variant.ID,
			Quantity:  2,
			Price:     variant.Price,
		}},
	}
	require.NoError(t, repo.Create(ctx, o))
	assert.NotEmpty(t, o.ID)

	loaded, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "Wool Scarf", loaded.Items[0].ProductName)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
}

func TestGormVariantRepository_FindAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewGormVariantRepository(db)

	p := fx.Product("Canvas Tote", "25.00")
	fx.Variant(p, "L", 8)
	fx.Variant(p, "S", 0)

	variants, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "S", variants[0].Size)
	assert.Equal(t, 0, variants[0].Stock)
	assert.Equal(t, "Canvas Tote", variants[0].ProductName)
}
