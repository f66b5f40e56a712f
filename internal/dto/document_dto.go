package dto

// ─── Response DTOs ───────────────────────────────────────────────────────────

// DocumentResponse reports the extraction pipeline state of an uploaded
// invoice document.
type DocumentResponse struct {
	ID         string  `json:"id"`
	Filename   string  `json:"filename"`
	Status     string  `json:"status"` // pending | ingested | failed
	InvoiceID  *string `json:"invoice_id,omitempty"`
	RetryCount int     `json:"retry_count"`
	LastError  *string `json:"last_error,omitempty"`
	CreatedAt  string  `json:"created_at"`
}
