package allocation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landedcost/internal/uom"
)

func item(base uom.Base, qty string) Item {
	return Item{
		ID:           uuid.New(),
		BaseUOM:      base,
		QtyBase:      decimal.RequireFromString(qty),
		UnitPriceNet: decimal.RequireFromString("1.50"),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAllocatePerKgTwoLines(t *testing.T) {
	// 50 kg + 30 kg, 80.00 surcharge → 1.00/kg on both lines
	items := []Item{item(uom.Kg, "50"), item(uom.Kg, "30")}

	got := Allocate(items, dec("80.00"), ModePerKg)
	require.Len(t, got, 2)
	assert.True(t, got[0].SurchargePerUnit.Equal(dec("1")), "line A = %s", got[0].SurchargePerUnit)
	assert.True(t, got[1].SurchargePerUnit.Equal(dec("1")), "line B = %s", got[1].SurchargePerUnit)
}

func TestAllocateMixedUnits(t *testing.T) {
	// 50 kg + 30 pieces, 100.00 surcharge per_kg → kg line gets 2.00/kg, piece line nothing
	items := []Item{item(uom.Kg, "50"), item(uom.Piece, "30")}

	got := Allocate(items, dec("100.00"), ModePerKg)
	assert.True(t, got[0].SurchargePerUnit.Equal(dec("2")))
	assert.True(t, got[1].SurchargePerUnit.IsZero())
}

func TestAllocateConservation(t *testing.T) {
	// Awkward divisor: shares must still sum back to the surcharge total.
	items := []Item{item(uom.Kg, "13.7"), item(uom.Kg, "29.41"), item(uom.Piece, "12")}
	total := dec("99.99")

	got := Allocate(items, total, ModePerKg)

	allocated := decimal.Zero
	for _, a := range got {
		allocated = allocated.Add(a.SurchargePerUnit.Mul(a.QtyBase))
	}
	diff := allocated.Sub(total).Abs()
	tolerance := total.Abs().Mul(dec("0.000000001"))
	assert.True(t, diff.LessThanOrEqual(tolerance),
		"allocated %s differs from total %s by %s", allocated, total, diff)
}

func TestAllocateZeroSurcharge(t *testing.T) {
	items := []Item{item(uom.Kg, "50"), item(uom.Piece, "30")}
	for _, mode := range []Mode{ModeNone, ModePerKg, ModePerPiece} {
		got := Allocate(items, decimal.Zero, mode)
		for i, a := range got {
			assert.True(t, a.SurchargePerUnit.IsZero(), "mode %s item %d", mode, i)
		}
	}
}

func TestAllocateModeNone(t *testing.T) {
	items := []Item{item(uom.Kg, "50"), item(uom.Piece, "30")}
	got := Allocate(items, dec("500.00"), ModeNone)
	for _, a := range got {
		assert.True(t, a.SurchargePerUnit.IsZero())
	}
}

func TestAllocateEmptyBucket(t *testing.T) {
	// Nonzero surcharge, but no kg lines: cost stays unallocated.
	items := []Item{item(uom.Piece, "10"), item(uom.Piece, "5")}
	got := Allocate(items, dec("40.00"), ModePerKg)
	for _, a := range got {
		assert.True(t, a.SurchargePerUnit.IsZero())
	}
	assert.True(t, BucketQty(items, ModePerKg).IsZero())
}

func TestAllocatePerPiece(t *testing.T) {
	items := []Item{item(uom.Piece, "60"), item(uom.Piece, "40"), item(uom.Kg, "25")}
	got := Allocate(items, dec("50.00"), ModePerPiece)
	assert.True(t, got[0].SurchargePerUnit.Equal(dec("0.5")))
	assert.True(t, got[1].SurchargePerUnit.Equal(dec("0.5")))
	assert.True(t, got[2].SurchargePerUnit.IsZero(), "kg line must stay outside the piece bucket")
}

func TestAllocateDoesNotMutateInput(t *testing.T) {
	items := []Item{item(uom.Kg, "50")}
	before := items[0].QtyBase.String()

	got := Allocate(items, dec("80.00"), ModePerKg)
	got[0].QtyBase = dec("999")
	got[0].SurchargePerUnit = dec("999")

	assert.Equal(t, before, items[0].QtyBase.String())
}

func TestAllocatePreservesOrderAndFields(t *testing.T) {
	a := item(uom.Kg, "1")
	b := item(uom.Piece, "2")
	c := item(uom.Kg, "3")

	got := Allocate([]Item{a, b, c}, dec("8.00"), ModePerKg)
	require.Len(t, got, 3)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
	assert.Equal(t, c.ID, got[2].ID)
	assert.True(t, got[1].UnitPriceNet.Equal(b.UnitPriceNet))
}

func TestBucketQty(t *testing.T) {
	items := []Item{item(uom.Kg, "50"), item(uom.Piece, "30"), item(uom.Kg, "20")}
	assert.True(t, BucketQty(items, ModePerKg).Equal(dec("70")))
	assert.True(t, BucketQty(items, ModePerPiece).Equal(dec("30")))
	assert.True(t, BucketQty(items, ModeNone).IsZero())
}

func TestModeValid(t *testing.T) {
	assert.True(t, ModePerKg.Valid())
	assert.True(t, ModePerPiece.Valid())
	assert.True(t, ModeNone.Valid())
	assert.False(t, Mode("per_ton").Valid())
	assert.False(t, Mode("").Valid())
}
