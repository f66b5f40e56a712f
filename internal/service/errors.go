package service

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the ingestion engine. Handlers map these onto
// HTTP statuses; everything else is treated as a store failure.

// UnknownProductError aborts an ingestion that references a SKU absent from
// the catalog while product auto-creation is disabled.
type UnknownProductError struct {
	SKU string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product sku %q and auto-creation is disabled", e.SKU)
}

// ValidationError marks a malformed payload, detected before any write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// StoreConflictError reports a uniqueness conflict that survived the
// resolve-and-retry pass. Callers may retry the whole ingestion.
type StoreConflictError struct {
	Err error
}

func (e *StoreConflictError) Error() string { return "store conflict: " + e.Err.Error() }
func (e *StoreConflictError) Unwrap() error { return e.Err }

// StoreUnavailableError wraps any store failure that is fatal for the current
// call. The engine does not retry; the caller may re-run the ingestion.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string { return "store unavailable: " + e.Err.Error() }
func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// ErrEmptyAllocationBucket rejects an ingestion whose surcharge cannot be
// spread because no line item matches the allocation unit. Only returned
// under the "error" empty-bucket policy; the default policy leaves the
// surcharge unallocated.
var ErrEmptyAllocationBucket = errors.New("surcharge cannot be allocated: no line items match the allocation unit")
