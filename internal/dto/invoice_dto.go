package dto

import "github.com/shopspring/decimal"

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type InvoiceFilter struct {
	SupplierID string `form:"supplier_id" validate:"omitempty,uuid"`
	InvoiceNo  string `form:"invoice_no"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InvoiceItemResponse struct {
	ID             string           `json:"id"`
	ProductID      *string          `json:"product_id"`
	ProductSKU     *string          `json:"product_sku,omitempty"`
	LineType       string           `json:"line_type"`
	Qty            decimal.Decimal  `json:"qty"`
	UOM            string           `json:"uom"`
	UnitPriceNet   decimal.Decimal  `json:"unit_price_net"`
	TaxRatePercent *decimal.Decimal `json:"tax_rate_percent,omitempty"`
	DiscountAbs    decimal.Decimal  `json:"discount_abs"`
	NetTotal       decimal.Decimal  `json:"net_total"`
}

type InvoiceResponse struct {
	ID           string                `json:"id"`
	SupplierID   string                `json:"supplier_id"`
	SupplierName string                `json:"supplier_name,omitempty"`
	InvoiceNo    string                `json:"invoice_no"`
	InvoiceDate  string                `json:"invoice_date"`
	Currency     string                `json:"currency"`
	CreatedAt    string                `json:"created_at"`
	Items        []InvoiceItemResponse `json:"items,omitempty"`
}

type InvoiceListResponse struct {
	Data  []InvoiceResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
