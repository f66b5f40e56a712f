package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Price history reasons.
const (
	PriceReasonInvoiceIngest = "invoice_ingest"
	PriceReasonManual        = "manual"
)

// PriceHistory records every landed-cost change of a product.
// Rows are immutable — never deleted or modified.
type PriceHistory struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierID       *uuid.UUID      `gorm:"type:uuid;index"`
	InvoiceID        *uuid.UUID      `gorm:"type:uuid;index"`
	CostBefore       decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CostAfter        decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	SurchargePerUnit decimal.Decimal `gorm:"type:decimal(12,6);not null;default:0"`
	Reason           string          `gorm:"not null;default:'invoice_ingest'"`
	CreatedAt        time.Time

	Product  Product   `gorm:"foreignKey:ProductID"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}
