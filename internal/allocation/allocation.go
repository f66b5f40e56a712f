// Package allocation distributes surcharge and shipping costs across product
// line items proportionally by base-unit quantity. It is pure — no I/O, no
// mutation of inputs — so it can back both invoice finalization and the
// standalone pricing preview endpoint.
package allocation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"landedcost/internal/uom"
)

// Mode selects the allocation basis.
type Mode string

const (
	ModeNone     Mode = "none"
	ModePerKg    Mode = "per_kg"
	ModePerPiece Mode = "per_piece"
)

// Valid reports whether m is a recognized allocation mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeNone, ModePerKg, ModePerPiece:
		return true
	}
	return false
}

// bucket returns the base unit this mode allocates over, or "" for none.
func (m Mode) bucket() uom.Base {
	switch m {
	case ModePerKg:
		return uom.Kg
	case ModePerPiece:
		return uom.Piece
	}
	return ""
}

// Item is a product line reduced to what allocation needs.
type Item struct {
	ID           uuid.UUID
	BaseUOM      uom.Base
	QtyBase      decimal.Decimal
	UnitPriceNet decimal.Decimal
}

// AllocatedItem is an Item plus its per-base-unit surcharge share.
type AllocatedItem struct {
	Item
	SurchargePerUnit decimal.Decimal
}

// BucketQty sums QtyBase over the items whose base unit matches the mode's
// bucket. Zero for mode none. Callers that want to reject unallocatable
// surcharges check this before calling Allocate.
func BucketQty(items []Item, mode Mode) decimal.Decimal {
	b := mode.bucket()
	sum := decimal.Zero
	if b == "" {
		return sum
	}
	for _, it := range items {
		if it.BaseUOM == b {
			sum = sum.Add(it.QtyBase)
		}
	}
	return sum
}

// Allocate computes each item's surcharge contribution per base unit.
//
// Items outside the bucket unit always receive zero. With mode none, a zero
// total, or an empty bucket, every item receives zero — degenerate cases by
// policy, not errors. The returned slice preserves input order and carries
// copies of the input items.
//
// Invariant for a nonzero bucket: the per-unit shares times the bucket
// quantities sum back to totalSurchargeNet (within decimal division
// precision).
func Allocate(items []Item, totalSurchargeNet decimal.Decimal, mode Mode) []AllocatedItem {
	out := make([]AllocatedItem, len(items))
	for i, it := range items {
		out[i] = AllocatedItem{Item: it, SurchargePerUnit: decimal.Zero}
	}

	b := mode.bucket()
	if b == "" || totalSurchargeNet.IsZero() {
		return out
	}

	denom := BucketQty(items, mode)
	if !denom.IsPositive() {
		return out
	}

	perUnit := totalSurchargeNet.Div(denom)
	for i := range out {
		if out[i].BaseUOM == b {
			out[i].SurchargePerUnit = perUnit
		}
	}
	return out
}
