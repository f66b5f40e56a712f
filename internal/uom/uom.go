// Package uom maps raw unit-of-measure codes from supplier invoices onto the
// two canonical base units used for cost allocation: piece and kilogram.
package uom

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Base is a canonical base unit of measure.
type Base string

const (
	Piece Base = "piece"
	Kg    Base = "kg"
)

// Recognized raw codes. Suppliers are not consistent about casing, so all
// comparisons are case-insensitive.
const (
	CodeTransportUnit = "TU"
	CodeKilogram      = "KG"
)

// IsTransportUnit reports whether code denotes a transport unit (case-insensitive).
func IsTransportUnit(code string) bool {
	return strings.EqualFold(code, CodeTransportUnit)
}

// IsKilogram reports whether code denotes kilograms (case-insensitive).
func IsKilogram(code string) bool {
	return strings.EqualFold(code, CodeKilogram)
}

// Normalize converts a raw quantity into a base unit and a base-unit quantity.
//
//   - transport units with a known conversion factor become pieces
//     (qty * piecesPerTransportUnit)
//   - kilograms stay kilograms
//   - anything else is treated as one piece per unit
//
// Unknown codes deliberately degrade to the piece default instead of failing;
// supplier price lists carry far more unit codes than we care to model.
func Normalize(code string, qty decimal.Decimal, piecesPerTransportUnit *int) (Base, decimal.Decimal) {
	switch {
	case IsTransportUnit(code) && piecesPerTransportUnit != nil:
		return Piece, qty.Mul(decimal.NewFromInt(int64(*piecesPerTransportUnit)))
	case IsKilogram(code):
		return Kg, qty
	default:
		return Piece, qty
	}
}
