package repository

import (
	"context"

	"landedcost/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PriceHistoryRepository interface {
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceHistory, int64, error)

	// CreateTx appends a price-change record inside the ingestion transaction.
	CreateTx(tx *gorm.DB, h *model.PriceHistory) error
}

type priceHistoryRepo struct{ db *gorm.DB }

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) CreateTx(tx *gorm.DB, h *model.PriceHistory) error {
	return tx.Create(h).Error
}

// ListByProduct returns paginated price-change records for one product,
// ordered newest-first (append-only table, so this reflects natural insert order).
func (r *priceHistoryRepo) ListByProduct(
	ctx context.Context,
	productID uuid.UUID,
	page, limit int,
) ([]model.PriceHistory, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.PriceHistory{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.PriceHistory
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Supplier").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
