// Package einvoice holds code lists and fixed identifiers of the EN 16931 /
// XRechnung profile used across document generation.
package einvoice

import "github.com/shopspring/decimal"

// =============================================================================
// UNTDID 1001 document type codes.
// =============================================================================

const (
	// TypeCodeCommercialInvoice is the fixed type code for a commercial
	// invoice (Handelsrechnung).
	TypeCodeCommercialInvoice = "380"
)

// =============================================================================
// UNTDID 4461 payment means codes.
// =============================================================================

const (
	// PaymentMeansSEPACreditTransfer is the only payment means this system
	// issues invoices for.
	PaymentMeansSEPACreditTransfer = "58"
)

// =============================================================================
// UNTDID 5305 VAT category codes.
// The system collapses standard (19%) and reduced (7%) rates into category
// "S"; only a zero rate maps to "Z". Kept as deliberate policy, see the
// design notes before changing it.
// =============================================================================

const (
	VatCategoryStandard = "S" // any nonzero rate
	VatCategoryZero     = "Z" // zero-rated
)

// =============================================================================
// UN/ECE Recommendation 20 unit of measure codes used on invoice lines.
// =============================================================================

const (
	UnitPiece       = "H87" // Stück (default)
	UnitHour        = "HUR" // Stunde
	UnitDay         = "DAY" // Tag
	UnitKilogram    = "KGM" // Kilogramm
	UnitGram        = "GRM" // Gramm
	UnitLitre       = "LTR" // Liter
	UnitMetre       = "MTR" // Meter
	UnitSquareMetre = "MTK" // Quadratmeter
	UnitCubicMetre  = "MTQ" // Kubikmeter
	UnitLumpSum     = "LS"  // Pauschale
)

// ValidUnitCodes lists the unit codes accepted on line items.
var ValidUnitCodes = map[string]bool{
	UnitPiece: true, UnitHour: true, UnitDay: true, UnitKilogram: true,
	UnitGram: true, UnitLitre: true, UnitMetre: true, UnitSquareMetre: true,
	UnitCubicMetre: true, UnitLumpSum: true,
}

// =============================================================================
// German VAT rates accepted on line items (Umsatzsteuersätze).
// =============================================================================

// ValidVatRates are the rates IsValidVatRate accepts, as fixed 2-decimal strings.
var ValidVatRates = map[string]bool{
	"19.00": true, // Regelsteuersatz
	"7.00":  true, // ermäßigter Satz
	"0.00":  true, // steuerfrei
}

// IsValidVatRate reports whether the rate is an accepted German VAT rate.
func IsValidVatRate(rate decimal.Decimal) bool {
	return ValidVatRates[rate.StringFixed(2)]
}

// IsValidUnitCode reports whether the unit code is on the accepted list.
func IsValidUnitCode(code string) bool {
	return ValidUnitCodes[code]
}
