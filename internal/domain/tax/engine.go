// Package tax implements the deterministic VAT computation for invoices.
//
// Rounding policy is kaufmännisches Runden (round half up) to 2 decimal
// places, applied at the point each line's net and tax amount are derived.
// Aggregations sum already-rounded line values and never re-derive tax from
// aggregate nets: EN 16931 requires per-rate subtotals, so a blended
// rate * total recomputation would drift on mixed-rate invoices.
package tax

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
)

// VatBreakdownEntry aggregates net and tax across all line items sharing a
// VAT rate. Output ordering is descending by rate so generated documents are
// reproducible.
type VatBreakdownEntry struct {
	Rate      decimal.Decimal
	NetAmount decimal.Decimal
	TaxAmount decimal.Decimal
}

// RoundHalfUp rounds to the given number of fractional digits, half away
// from zero. For the non-negative amounts on an invoice this is commercial
// rounding.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// Engine computes per-line and per-invoice amounts. Stateless.
type Engine struct{}

// NewEngine constructs the engine.
func NewEngine() *Engine { return &Engine{} }

// ComputeLine derives LineTotal and TaxAmount of a single item from its
// quantity, unit price and rate. Called on every item persistence so the
// derived fields can never diverge from their inputs.
func (e *Engine) ComputeLine(item *entity.InvoiceItem) {
	item.LineTotal = RoundHalfUp(item.Quantity.Mul(item.UnitPrice), 2)
	item.TaxAmount = RoundHalfUp(item.LineTotal.Mul(item.VatRate).Div(decimal.NewFromInt(100)), 2)
}

// ComputeTotals returns subtotal, tax amount and total of an invoice as sums
// of the already-rounded per-line values. Zero items yield zero totals; the
// "at least one item before finalize" rule belongs to the caller.
func (e *Engine) ComputeTotals(items []*entity.InvoiceItem) (subtotal, taxAmount, total decimal.Decimal) {
	subtotal = decimal.Zero
	taxAmount = decimal.Zero
	for _, item := range items {
		e.ComputeLine(item)
		subtotal = subtotal.Add(item.LineTotal)
		taxAmount = taxAmount.Add(item.TaxAmount)
	}
	return subtotal, taxAmount, subtotal.Add(taxAmount)
}

// ComputeVatBreakdown aggregates line items by VAT rate, descending by rate.
func (e *Engine) ComputeVatBreakdown(items []*entity.InvoiceItem) []VatBreakdownEntry {
	byRate := make(map[string]*VatBreakdownEntry)
	for _, item := range items {
		e.ComputeLine(item)
		key := item.VatRate.StringFixed(2)
		entry, ok := byRate[key]
		if !ok {
			entry = &VatBreakdownEntry{
				Rate:      item.VatRate,
				NetAmount: decimal.Zero,
				TaxAmount: decimal.Zero,
			}
			byRate[key] = entry
		}
		entry.NetAmount = entry.NetAmount.Add(item.LineTotal)
		entry.TaxAmount = entry.TaxAmount.Add(item.TaxAmount)
	}

	breakdown := make([]VatBreakdownEntry, 0, len(byRate))
	for _, entry := range byRate {
		breakdown = append(breakdown, *entry)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Rate.GreaterThan(breakdown[j].Rate)
	})
	return breakdown
}
