package models

import (
	"time"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderModel is the persistence model for orders
type OrderModel struct {
	ID              string            `gorm:"type:varchar(64);primaryKey"`
	Email           string            `gorm:"type:varchar(255);not null;index"`
	CustomerName    string            `gorm:"type:varchar(255)"`
	Status          order.OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Subtotal        decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0"`
	ShippingCost    decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0"`
	Total           decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0"`
	TrackingNumber  string            `gorm:"type:varchar(100)"`
	ShippedAt       *time.Time
	PaymentIntentID string           `gorm:"type:varchar(255);index"`
	CreatedAt       time.Time        `gorm:"not null;index"`
	UpdatedAt       time.Time        `gorm:"not null"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// BeforeCreate assigns an id when none was given
func (m *OrderModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	return nil
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		ID:              m.ID,
		Email:           m.Email,
		CustomerName:    m.CustomerName,
		Status:          m.Status,
		Subtotal:        m.Subtotal,
		ShippingCost:    m.ShippingCost,
		Total:           m.Total,
		TrackingNumber:  m.TrackingNumber,
		ShippedAt:       m.ShippedAt,
		PaymentIntentID: m.PaymentIntentID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		Items:           make([]order.OrderItem, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the order columns; items are written separately
func (m *OrderModel) FromDomain(o *order.Order) {
	m.ID = o.ID
	m.Email = o.Email
	m.CustomerName = o.CustomerName
	m.Status = o.Status
	m.Subtotal = o.Subtotal
	m.ShippingCost = o.ShippingCost
	m.Total = o.Total
	m.TrackingNumber = o.TrackingNumber
	m.ShippedAt = utcPtr(o.ShippedAt)
	m.PaymentIntentID = o.PaymentIntentID
	m.CreatedAt = o.CreatedAt.UTC()
	m.UpdatedAt = o.UpdatedAt.UTC()
}

// OrderItemModel is the persistence model for order lines
type OrderItemModel struct {
	ID        string              `gorm:"type:varchar(64);primaryKey"`
	OrderID   string              `gorm:"type:varchar(64);not null;index"`
	ProductID string              `gorm:"type:varchar(64);not null;index"`
	VariantID string              `gorm:"type:varchar(64);not null"`
	Quantity  int                 `gorm:"not null"`
	Price     decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	Product   ProductModel        `gorm:"foreignKey:ProductID;references:ID"`
	Variant   ProductVariantModel `gorm:"foreignKey:VariantID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// BeforeCreate assigns an id when none was given
func (m *OrderItemModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	return nil
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *OrderItemModel) ToDomain() order.OrderItem {
	return order.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		VariantID:   m.VariantID,
		Quantity:    m.Quantity,
		Price:       m.Price,
		ProductName: m.Product.Name,
		VariantSize: m.Variant.Size,
	}
}

func newID() string {
	return uuid.NewString()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
