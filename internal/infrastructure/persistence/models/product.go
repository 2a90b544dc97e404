package models

import (
	"time"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductModel is the persistence model for catalog products
type ProductModel struct {
	ID        string          `gorm:"type:varchar(64);primaryKey"`
	Name      string          `gorm:"type:varchar(255);not null"`
	Slug      string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	BasePrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// BeforeCreate assigns an id when none was given
func (m *ProductModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	return nil
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() order.Product {
	return order.Product{
		ID:        m.ID,
		Name:      m.Name,
		Slug:      m.Slug,
		BasePrice: m.BasePrice,
	}
}

// ProductVariantModel is the persistence model for product sizes and stock
type ProductVariantModel struct {
	ID        string          `gorm:"type:varchar(64);primaryKey"`
	ProductID string          `gorm:"type:varchar(64);not null;index"`
	Size      string          `gorm:"type:varchar(50);not null"`
	Stock     int             `gorm:"not null;default:0"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Product   ProductModel    `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// BeforeCreate assigns an id when none was given
func (m *ProductVariantModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	return nil
}

// ToDomain converts the persistence model to a domain ProductVariant
func (m *ProductVariantModel) ToDomain() order.ProductVariant {
	return order.ProductVariant{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.Product.Name,
		Size:        m.Size,
		Stock:       m.Stock,
		Price:       m.Price,
	}
}

// All lists every model in dependency order, for AutoMigrate in tests and
// local sqlite databases.
func All() []any {
	return []any{
		&ProductModel{},
		&ProductVariantModel{},
		&OrderModel{},
		&OrderItemModel{},
	}
}
