package repository

import (
	"context"
	"errors"
	"strings"

	"landedcost/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierRepository defines the data access contract for suppliers.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	FindByName(ctx context.Context, name string) (*model.Supplier, error)
	List(ctx context.Context) ([]model.Supplier, error)

	// UpsertByNameTx resolves a supplier by exact name inside a transaction,
	// creating it on first sight. A uniqueness conflict from a concurrent
	// creation is resolved by re-reading the winner's row.
	UpsertByNameTx(tx *gorm.DB, name string) (*model.Supplier, error)
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *supplierRepo) FindByName(ctx context.Context, name string) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error
	return &s, err
}

func (r *supplierRepo) List(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) UpsertByNameTx(tx *gorm.DB, name string) (*model.Supplier, error) {
	var s model.Supplier
	err := tx.Where("name = ?", name).First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	s = model.Supplier{Name: name, Active: true}
	if err := tx.Create(&s).Error; err != nil {
		// Lost the race against a concurrent ingestion — the winner's row
		// must exist now, so retry the lookup once.
		if IsUniqueViolation(err) {
			var existing model.Supplier
			if err2 := tx.Where("name = ?", name).First(&existing).Error; err2 == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &s, nil
}

// IsUniqueViolation detects a uniqueness constraint error from the driver.
// GORM surfaces ErrDuplicatedKey with its translated-errors option; the raw
// Postgres SQLSTATE 23505 text is matched as a fallback.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
