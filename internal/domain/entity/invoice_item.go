package entity

import "github.com/shopspring/decimal"

// InvoiceItem is one line of an invoice. Position is 1-based and defines the
// document order. LineTotal and TaxAmount are derived from quantity, price and
// rate on every persistence; they are never independently settable.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Position    int
	SKU         string
	Description string
	Quantity    decimal.Decimal // 3 fractional digits
	Unit        string          // UN/ECE Rec 20 unit code, default "H87" (piece)
	UnitPrice   decimal.Decimal // 2 fractional digits
	VatRate     decimal.Decimal // percent, 2 fractional digits

	LineTotal decimal.Decimal // round(quantity * unit_price, 2)
	TaxAmount decimal.Decimal // round(line_total * vat_rate / 100, 2)
}
