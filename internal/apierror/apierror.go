// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Status: "error", Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Status string            `json:"status"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Status: "error", Detail: "validation failed", Fields: fields}
}
