package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSupplierRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SupplierResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
