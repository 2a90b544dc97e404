package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/MuratKus/burbarshop/internal/domain/shared"
	"github.com/MuratKus/burbarshop/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// withItems preloads order lines with their product and variant
func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id")
		}).
		Preload("Items.Product").
		Preload("Items.Variant")
}

// FindRecent returns orders newest first, optionally filtered by status
func (r *GormOrderRepository) FindRecent(ctx context.Context, filter order.OrderFilter) ([]order.Order, error) {
	query := r.withItems(ctx).Order("created_at DESC")
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

// FindByID finds an order by its full id
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var m models.OrderModel
	if err := r.withItems(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByIDSuffix finds orders whose id ends with suffix, ignoring case
func (r *GormOrderRepository) FindByIDSuffix(ctx context.Context, suffix string, limit int) ([]order.Order, error) {
	if suffix == "" {
		return nil, nil
	}
	pattern := "%" + escapeLike(strings.ToUpper(suffix))

	query := r.withItems(ctx).
		Where("UPPER(id) LIKE ? ESCAPE '\\'", pattern).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

// FindPlacedSince returns orders created at or after since, oldest first
func (r *GormOrderRepository) FindPlacedSince(ctx context.Context, since time.Time, exclude ...order.OrderStatus) ([]order.Order, error) {
	query := r.withItems(ctx).
		Where("created_at >= ?", since.UTC()).
		Order("created_at ASC")
	if len(exclude) > 0 {
		statuses := make([]string, len(exclude))
		for i, s := range exclude {
			statuses[i] = string(s)
		}
		query = query.Where("status NOT IN ?", statuses)
	}

	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

// Save writes the mutable order columns of an existing order. Concurrent
// saves of the same order are last-write-wins.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	var m models.OrderModel
	m.FromDomain(o)

	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{ID: o.ID}).
		Select("status", "tracking_number", "shipped_at", "updated_at").
		Updates(&m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Create inserts a new order together with its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	var m models.OrderModel
	m.FromDomain(o)
	for _, item := range o.Items {
		m.Items = append(m.Items, models.OrderItemModel{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	o.ID = m.ID
	o.CreatedAt = m.CreatedAt
	o.UpdatedAt = m.UpdatedAt
	return nil
}

func toDomainOrders(rows []models.OrderModel) []order.Order {
	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Ensure GormOrderRepository implements order.OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
