package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product carries the base-unit metadata that drives cost allocation.
// BaseUOM: "piece" | "kg". PiecesPerTransportUnit only applies to piece-based
// products and describes packaging (1 TU = N pieces); kg products never have
// a piece conversion factor.
type Product struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU                    string    `gorm:"column:sku;uniqueIndex;not null"`
	Name                   string    `gorm:"index;not null"`
	BaseUOM                string    `gorm:"column:base_uom;type:varchar(10);not null;default:'piece'"`
	PiecesPerTransportUnit *int
	// CostNet is the landed cost per base unit, maintained by invoice
	// finalization (line net / base qty + allocated surcharge).
	CostNet    decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	SupplierID *uuid.UUID      `gorm:"type:uuid;index"`
	Active     bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}
