package repository

import (
	"context"

	"landedcost/internal/dto"
	"landedcost/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for products.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)

	// Used inside the ingestion transaction — callers must pass the tx instance
	FindBySKUTx(tx *gorm.DB, sku string) (*model.Product, error)
	CreateTx(tx *gorm.DB, p *model.Product) error
	UpdateCostTx(tx *gorm.DB, id uuid.UUID, cost decimal.Decimal) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("active = true")

	if filter.SKU != "" {
		q = q.Where("sku = ?", filter.SKU)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("sku ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) FindBySKUTx(tx *gorm.DB, sku string) (*model.Product, error) {
	var p model.Product
	err := tx.Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

func (r *productRepo) UpdateCostTx(tx *gorm.DB, id uuid.UUID, cost decimal.Decimal) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Update("cost_net", cost).Error
}
