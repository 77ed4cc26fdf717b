// Package pdf renders the human-readable invoice page (A4) that becomes the
// visual half of a ZUGFeRD document.
//
// Page layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Firma + USt-IdNr.   │  Rechnungsnr. + Datum        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RECHNUNGSEMPFÄNGER: Name + Anschrift                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELLE: Pos | Beschreibung | Menge | Einheit | Preis ...  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SUMMEN: Zwischensumme / MwSt / Gesamtbetrag                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Zahlungshinweis + Bankverbindung                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/tax"
)

var (
	colorPrimary = &props.Color{Red: 30, Green: 60, Blue: 110}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// InvoiceRenderer renders invoices with Maroto v2.
type InvoiceRenderer struct {
	engine *tax.Engine
}

// NewInvoiceRenderer builds the renderer.
func NewInvoiceRenderer() *InvoiceRenderer {
	return &InvoiceRenderer{engine: tax.NewEngine()}
}

// Render generates the invoice page and returns the PDF bytes.
func (r *InvoiceRenderer) Render(
	invoice *entity.Invoice,
	tenant *entity.Tenant,
	customer *entity.Customer,
	items []*entity.InvoiceItem,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Rechnung "+invoice.InvoiceNumber, true).
		WithAuthor(tenant.Name, true).
		WithSubject("Rechnung", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice, tenant))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(recipientRow(customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, itemRow := range tableItemRows(items) {
		m.AddRows(itemRow)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(r.engine, invoice, items))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, footer := range footerRows(invoice, tenant) {
		m.AddRows(footer)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: seller name + VAT id (left), invoice number + dates (right).
func headerRow(invoice *entity.Invoice, tenant *entity.Tenant) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(tenant.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(sellerAddressLine(tenant), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
			text.New("USt-IdNr.: "+nonEmpty(tenant.VatID, tenant.TaxID), props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("RECHNUNG", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Rechnungsdatum: "+invoice.InvoiceDate.Format("02.01.2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
			text.New("Fällig am: "+invoice.DueDate.Format("02.01.2006"), props.Text{
				Size: 8, Align: align.Right, Top: 18, Color: colorGray,
			}),
		),
	)
}

func recipientRow(customer *entity.Customer) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("RECHNUNGSEMPFÄNGER", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(customer.DisplayName(), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s, %s %s", customer.Street, customer.ZipCode, customer.City), props.Text{
				Size: 8, Top: 12, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Pos.", 1, align.Center),
		h("Beschreibung", 4, align.Left),
		h("Menge", 1, align.Right),
		h("Einheit", 1, align.Center),
		h("Einzelpreis", 2, align.Right),
		h("MwSt", 1, align.Center),
		h("Gesamt", 2, align.Right),
	)
}

func tableItemRows(items []*entity.InvoiceItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, item := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", item.Position),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(4).Add(text.New(
				item.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				formatQuantity(item.Quantity),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				item.Unit,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				formatEUR(item.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				formatPercent(item.VatRate),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				formatEUR(item.LineTotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: subtotal, one VAT line per rate, grand total.
func totalsRow(engine *tax.Engine, invoice *entity.Invoice, items []*entity.InvoiceItem) core.Row {
	breakdown := engine.ComputeVatBreakdown(items)

	labels := []core.Component{
		text.New("Zwischensumme (netto):", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		}),
	}
	values := []core.Component{
		text.New(formatEUR(invoice.Subtotal), props.Text{Size: 9, Align: align.Right, Right: 1}),
	}
	top := 5.0
	for _, entry := range breakdown {
		labels = append(labels, text.New(
			fmt.Sprintf("zzgl. %s MwSt:", formatPercent(entry.Rate)),
			props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top},
		))
		values = append(values, text.New(
			formatEUR(entry.TaxAmount),
			props.Text{Size: 9, Align: align.Right, Right: 1, Top: top},
		))
		top += 5
	}
	labels = append(labels, text.New("GESAMTBETRAG:", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: top + 1,
	}))
	values = append(values, text.New(formatEUR(invoice.Total), props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: top + 1,
	}))

	height := 14 + 5*float64(len(breakdown))
	return row.New(height).Add(
		col.New(4),
		col.New(4).Add(labels...),
		col.New(4).Add(values...),
	)
}

// footerRows: payment terms and the bank details.
func footerRows(invoice *entity.Invoice, tenant *entity.Tenant) []core.Row {
	rows := []core.Row{}

	terms := invoice.PaymentTerms
	if terms == "" {
		terms = "Zahlbar bis " + invoice.DueDate.Format("02.01.2006") + " ohne Abzug."
	}
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New(terms, props.Text{Size: 8, Top: 1}),
	)))

	if tenant.IBAN != "" {
		bank := fmt.Sprintf("Bankverbindung: %s   |   IBAN: %s   |   BIC: %s",
			nonEmpty(tenant.BankName, "—"), tenant.IBAN, nonEmpty(tenant.BIC, "—"))
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(bank, props.Text{Size: 7.5, Color: colorGray, Top: 1}),
		)))
	}

	if invoice.Notes != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(invoice.Notes, props.Text{Size: 7.5, Color: colorGray, Top: 2}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func sellerAddressLine(tenant *entity.Tenant) string {
	return fmt.Sprintf("%s · %s %s", tenant.Street, tenant.ZipCode, tenant.City)
}

// formatEUR renders an amount in German notation: 1.234,56 €
func formatEUR(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	intPart = groupThousands(intPart)
	out := intPart + "," + fracPart + " €"
	if neg {
		out = "-" + out
	}
	return out
}

// groupThousands inserts dots as thousands separators: "1000000" → "1.000.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// formatQuantity drops trailing zeros: 2.000 → "2", 1.500 → "1,5"
func formatQuantity(d decimal.Decimal) string {
	s := strings.TrimRight(d.StringFixed(3), "0")
	s = strings.TrimRight(s, ".")
	return strings.ReplaceAll(s, ".", ",")
}

// formatPercent renders a VAT rate without decimals: "19 %"
func formatPercent(d decimal.Decimal) string {
	return d.Truncate(0).String() + " %"
}
