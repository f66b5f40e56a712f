package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AdjustCostRequest manually overrides a product's landed cost.
type AdjustCostRequest struct {
	CostNet decimal.Decimal `json:"cost_net" validate:"required,gt=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	SKU        string `form:"sku"`
	Name       string `form:"name"`
	SupplierID string `form:"supplier_id" validate:"omitempty,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID                     string          `json:"id"`
	SKU                    string          `json:"sku"`
	Name                   string          `json:"name"`
	BaseUOM                string          `json:"base_uom"`
	PiecesPerTransportUnit *int            `json:"pieces_per_transport_unit,omitempty"`
	CostNet                decimal.Decimal `json:"cost_net"`
	SupplierID             *string         `json:"supplier_id"`
	Active                 bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Price history ───────────────────────────────────────────────────────────

type PriceHistoryItem struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	SupplierID       *string         `json:"supplier_id,omitempty"`
	SupplierName     *string         `json:"supplier_name,omitempty"`
	InvoiceID        *string         `json:"invoice_id,omitempty"`
	CostBefore       decimal.Decimal `json:"cost_before"`
	CostAfter        decimal.Decimal `json:"cost_after"`
	SurchargePerUnit decimal.Decimal `json:"surcharge_per_unit"`
	Reason           string          `json:"reason"`
	CreatedAt        string          `json:"created_at"`
}

type PriceHistoryListResponse struct {
	Data  []PriceHistoryItem `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
