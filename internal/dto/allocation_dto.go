package dto

import "github.com/shopspring/decimal"

// ─── Allocation preview (POST /v1/allocation/preview) ────────────────────────
// Runs the surcharge allocator standalone, without touching the store —
// useful for pricing what-ifs and for validating supplier quotes.

type AllocationPreviewItem struct {
	ID           string          `json:"id"             validate:"omitempty,uuid"`
	BaseUOM      string          `json:"base_uom"       validate:"required,oneof=piece kg"`
	QtyBase      decimal.Decimal `json:"qty_base"       validate:"required,gt=0"`
	UnitPriceNet decimal.Decimal `json:"unit_price_net" validate:"min=0"`
}

type AllocationPreviewRequest struct {
	Items             []AllocationPreviewItem `json:"items"               validate:"required,min=1,dive"`
	TotalSurchargeNet decimal.Decimal         `json:"total_surcharge_net" validate:"min=0"`
	Mode              string                  `json:"mode"                validate:"required,oneof=none per_kg per_piece"`
}

type AllocationPreviewLine struct {
	ID               string          `json:"id,omitempty"`
	BaseUOM          string          `json:"base_uom"`
	QtyBase          decimal.Decimal `json:"qty_base"`
	UnitPriceNet     decimal.Decimal `json:"unit_price_net"`
	SurchargePerUnit decimal.Decimal `json:"surcharge_per_unit"`
	LandedUnitCost   decimal.Decimal `json:"landed_unit_cost"`
}

type AllocationPreviewResponse struct {
	Mode           string                  `json:"mode"`
	BucketQty      decimal.Decimal         `json:"bucket_qty"`
	TotalAllocated decimal.Decimal         `json:"total_allocated"`
	Items          []AllocationPreviewLine `json:"items"`
}
