package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// IngestItemInput is one raw invoice line. product_sku is required for
// product and surcharge lines and forbidden checks happen in the service
// (shipping lines carry no product association).
type IngestItemInput struct {
	LineType       string           `json:"line_type"        validate:"required,oneof=product surcharge shipping"`
	ProductSKU     *string          `json:"product_sku"      validate:"omitempty,min=1,max=64"`
	ProductName    *string          `json:"product_name"     validate:"omitempty,max=200"`
	Qty            decimal.Decimal  `json:"qty"              validate:"required,gt=0"`
	UOM            string           `json:"uom"              validate:"required,max=12"`
	UnitPriceNet   decimal.Decimal  `json:"unit_price_net"   validate:"min=0"`
	TaxRatePercent *decimal.Decimal `json:"tax_rate_percent" validate:"omitempty,min=0,max=100"`
	DiscountAbs    *decimal.Decimal `json:"discount_abs"     validate:"omitempty,min=0"`
}

// IngestOptions tune a single ingestion call.
type IngestOptions struct {
	AllocateSurcharges *string `json:"allocate_surcharges" validate:"omitempty,oneof=none per_kg per_piece"`
	AutoCreateProducts *bool   `json:"autoCreateProducts"`
}

// IngestInvoiceRequest is the full raw invoice payload (POST /v1/invoices/ingest).
type IngestInvoiceRequest struct {
	Supplier    string            `json:"supplier"     validate:"required,min=1,max=200"`
	InvoiceNo   string            `json:"invoice_no"   validate:"required,min=1,max=64"`
	InvoiceDate string            `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	Currency    *string           `json:"currency"     validate:"omitempty,len=3"`
	Options     *IngestOptions    `json:"options"`
	Items       []IngestItemInput `json:"items"        validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// IngestInvoiceResponse reports the created (or, for a re-sent business key,
// the already existing) invoice.
type IngestInvoiceResponse struct {
	Status    string `json:"status"`
	InvoiceID string `json:"invoice_id"`
	Duplicate bool   `json:"duplicate"`
}
