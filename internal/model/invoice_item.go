package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice line types.
const (
	LineTypeProduct   = "product"
	LineTypeSurcharge = "surcharge"
	LineTypeShipping  = "shipping"
)

// InvoiceItem is one invoice line, immutable once written. ProductID is nil
// for shipping lines. Position preserves payload order — allocation does not
// depend on it, but error reporting and display do.
type InvoiceItem struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID      *uuid.UUID       `gorm:"type:uuid;index"`
	LineType       string           `gorm:"type:varchar(12);not null"`
	Qty            decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	UOM            string           `gorm:"column:uom;type:varchar(12);not null"`
	UnitPriceNet   decimal.Decimal  `gorm:"type:decimal(12,4);not null"`
	TaxRatePercent *decimal.Decimal `gorm:"type:decimal(5,2)"`
	DiscountAbs    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Position       int              `gorm:"not null"`
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// NetTotal is the line's net amount: qty * unit price minus the absolute
// discount.
func (i *InvoiceItem) NetTotal() decimal.Decimal {
	return i.Qty.Mul(i.UnitPriceNet).Sub(i.DiscountAbs)
}
