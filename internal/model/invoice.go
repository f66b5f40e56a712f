package model

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is a supplier purchase invoice header. The composite unique index
// on (supplier_id, invoice_no) makes re-ingestion of the same business key
// idempotent: the orchestrator returns the existing row instead of inserting
// a duplicate.
type Invoice struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_supplier_no"`
	InvoiceNo   string    `gorm:"not null;uniqueIndex:idx_invoices_supplier_no"`
	InvoiceDate time.Time `gorm:"type:date;not null"`
	Currency    string    `gorm:"type:varchar(3);not null;default:'EUR'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Supplier *Supplier     `gorm:"foreignKey:SupplierID"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID"`
}
