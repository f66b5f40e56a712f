package repository

import (
	"context"

	"landedcost/internal/dto"
	"landedcost/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceRepository defines the data access contract for invoices and their
// line items. Line items are immutable: insert-only, plus a cascade delete
// used exclusively for compensating cleanup of a failed ingestion.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)

	// Used inside the ingestion transaction — callers must pass the tx instance
	FindBySupplierAndNumberTx(tx *gorm.DB, supplierID uuid.UUID, invoiceNo string) (*model.Invoice, error)
	CreateTx(tx *gorm.DB, inv *model.Invoice) error
	CreateItemTx(tx *gorm.DB, item *model.InvoiceItem) error

	// DeleteCascadeTx removes an invoice and its items. Compensating cleanup
	// for stores that cannot roll back the whole ingestion.
	DeleteCascadeTx(tx *gorm.DB, invoiceID uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Product").
		First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Invoice{})

	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.InvoiceNo != "" {
		q = q.Where("invoice_no = ?", filter.InvoiceNo)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("invoice_date DESC, created_at DESC").
		Limit(filter.Limit).Offset(offset).
		Preload("Supplier").
		Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepo) FindBySupplierAndNumberTx(tx *gorm.DB, supplierID uuid.UUID, invoiceNo string) (*model.Invoice, error) {
	var inv model.Invoice
	err := tx.Where("supplier_id = ? AND invoice_no = ?", supplierID, invoiceNo).First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) CreateTx(tx *gorm.DB, inv *model.Invoice) error {
	return tx.Create(inv).Error
}

func (r *invoiceRepo) CreateItemTx(tx *gorm.DB, item *model.InvoiceItem) error {
	return tx.Create(item).Error
}

func (r *invoiceRepo) DeleteCascadeTx(tx *gorm.DB, invoiceID uuid.UUID) error {
	if err := tx.Where("invoice_id = ?", invoiceID).Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Invoice{}, invoiceID).Error
}

func (r *invoiceRepo) DB() *gorm.DB { return r.db }
