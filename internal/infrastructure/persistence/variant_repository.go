package persistence

import (
	"context"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/MuratKus/burbarshop/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVariantRepository implements order.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindAll loads every variant with its product name, ordered by stock then id
func (r *GormVariantRepository) FindAll(ctx context.Context) ([]order.ProductVariant, error) {
	var rows []models.ProductVariantModel
	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("stock ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	variants := make([]order.ProductVariant, len(rows))
	for i := range rows {
		variants[i] = rows[i].ToDomain()
	}
	return variants, nil
}

var _ order.VariantRepository = (*GormVariantRepository)(nil)
