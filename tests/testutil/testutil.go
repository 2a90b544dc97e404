// Package testutil provides shared fixtures for the burbarshop tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/MuratKus/burbarshop/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestDB opens a private in-memory SQLite database with the storefront
// tables migrated. The pool is pinned to one connection because every new
// sqlite ":memory:" connection is a separate empty database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Fixtures inserts catalog and order rows for tests
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
	n  int
}

// NewFixtures creates a fixture builder over db
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) nextID(prefix string) string {
	f.n++
	return fmt.Sprintf("%s%08d", prefix, f.n)
}

// Product inserts a product
func (f *Fixtures) Product(name, price string) models.ProductModel {
	f.t.Helper()
	p := models.ProductModel{
		ID:        f.nextID("prod"),
		Name:      name,
		Slug:      fmt.Sprintf("product-%d", f.n),
		BasePrice: decimal.RequireFromString(price),
	}
	require.NoError(f.t, f.db.Create(&p).Error)
	return p
}

// Variant inserts a variant of product
func (f *Fixtures) Variant(product models.ProductModel, size string, stock int) models.ProductVariantModel {
	f.t.Helper()
	v := models.ProductVariantModel{
		ID:        f.nextID("var"),
		ProductID: product.ID,
		Size:      size,
		Stock:     stock,
		Price:     product.BasePrice,
	}
	require.NoError(f.t, f.db.Create(&v).Error)
	return v
}

// Line describes one order item for Order
type Line struct {
	Variant  models.ProductVariantModel
	Quantity int
	Price    string
}

// OrderSpec describes an order row for Order
type OrderSpec struct {
	ID        string
	Email     string
	Status    order.OrderStatus
	Total     string
	CreatedAt time.Time
	Lines     []Line
}

// Order inserts an order with its lines. Zero fields get usable defaults.
func (f *Fixtures) Order(spec OrderSpec) models.OrderModel {
	f.t.Helper()
	if spec.ID == "" {
		spec.ID = f.nextID("ordr")
	}
	if spec.Email == "" {
		spec.Email = "buyer@example.com"
	}
	if spec.Status == "" {
		spec.Status = order.StatusPending
	}
	if spec.Total == "" {
		spec.Total = "0"
	}
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = time.Now().UTC()
	}

	total := decimal.RequireFromString(spec.Total)
	m := models.OrderModel{
		ID:        spec.ID,
		Email:     spec.Email,
		Status:    spec.Status,
		Subtotal:  total,
		Total:     total,
		CreatedAt: spec.CreatedAt.UTC(),
		UpdatedAt: spec.CreatedAt.UTC(),
	}
	for _, l := range spec.Lines {
		m.Items = append(m.Items, models.OrderItemModel{
			ID:        f.nextID("item"),
			ProductID: l.Variant.ProductID,
			VariantID: l.Variant.ID,
			Quantity:  l.Quantity,
			Price:     decimal.RequireFromString(l.Price),
		})
	}
	require.NoError(f.t, f.db.Create(&m).Error)
	return m
}

// DaysAgo returns now minus n days in UTC
func DaysAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -n)
}
