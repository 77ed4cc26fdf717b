// Package datev generates the CSV exports handed to accountants: the full
// DATEV Buchungsstapel (ASCII) layout and a simplified per-invoice list.
//
// Layout rules worth remembering: semicolons separate fields, decimal
// amounts use the German comma, the Buchungsstapel Belegdatum is DDMM and
// the booking batch carries exactly 118 columns even though most stay empty.
package datev

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
)

// Debit accounts start at 10000 (DATEV Debitoren range); the numeric part of
// the customer number is the offset.
const debitAccountBase = 10000

// Revenue accounts per SKR03.
const (
	revenueAccountStandard = 8400 // Erlöse 19% USt
	revenueAccountReduced  = 8300 // Erlöse 7% USt
	revenueAccountTaxFree  = 8100 // Steuerfreie Erlöse
)

// statusLabels are the German display names used in the simple export.
var statusLabels = map[string]string{
	entity.StatusDraft:     "Entwurf",
	entity.StatusFinal:     "Finalisiert",
	entity.StatusSent:      "Versendet",
	entity.StatusPaid:      "Bezahlt",
	entity.StatusCancelled: "Storniert",
}

// ExportRow bundles one invoice with its customer and items for export.
type ExportRow struct {
	Invoice  *entity.Invoice
	Customer *entity.Customer
	Items    []*entity.InvoiceItem
}

// Exporter writes DATEV CSV exports. Stateless.
type Exporter struct{}

// NewExporter constructs the exporter.
func NewExporter() *Exporter { return &Exporter{} }

// BuildBookingBatch generates the DATEV Buchungsstapel CSV. Draft invoices
// are skipped; they are not bookable records.
func (e *Exporter) BuildBookingBatch(rows []ExportRow) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	w.UseCRLF = true

	if err := w.Write(bookingBatchHeader()); err != nil {
		return "", fmt.Errorf("datev: write header: %w", err)
	}

	for _, row := range rows {
		if row.Invoice.Status == entity.StatusDraft {
			continue
		}
		record := make([]string, len(bookingBatchHeader()))
		record[0] = germanDecimal(row.Invoice.Total)                 // Umsatz
		record[1] = "S"                                              // Soll
		record[2] = "EUR"                                            // WKZ Umsatz
		record[6] = strconv.Itoa(debitAccount(row.Customer))         // Konto (Debitor)
		record[7] = strconv.Itoa(revenueAccount(row.Items))          // Gegenkonto (Erlös)
		record[9] = row.Invoice.InvoiceDate.Format("0201")           // Belegdatum DDMM
		record[10] = row.Invoice.InvoiceNumber                       // Belegfeld 1
		record[13] = "RE " + truncate(row.Customer.DisplayName(), 20) // Buchungstext

		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("datev: write record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("datev: flush: %w", err)
	}
	return buf.String(), nil
}

// BuildSimple generates the simplified per-invoice CSV. Draft invoices are
// skipped here too.
func (e *Exporter) BuildSimple(rows []ExportRow) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	w.UseCRLF = true

	header := []string{
		"Rechnungsnummer",
		"Rechnungsdatum",
		"Fälligkeitsdatum",
		"Kundenname",
		"Kundennummer",
		"Nettobetrag",
		"MwSt-Betrag",
		"MwSt-Satz",
		"Bruttobetrag",
		"Währung",
		"Status",
		"Zahlungsbedingungen",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("datev: write header: %w", err)
	}

	for _, row := range rows {
		inv := row.Invoice
		if inv.Status == entity.StatusDraft {
			continue
		}
		dueDate := ""
		if !inv.DueDate.IsZero() {
			dueDate = inv.DueDate.Format("02.01.2006")
		}
		record := []string{
			inv.InvoiceNumber,
			inv.InvoiceDate.Format("02.01.2006"),
			dueDate,
			row.Customer.DisplayName(),
			row.Customer.CustomerNumber,
			germanDecimal(inv.Subtotal),
			germanDecimal(inv.TaxAmount),
			mainVatRate(row.Items).StringFixed(0),
			germanDecimal(inv.Total),
			"EUR",
			statusLabels[inv.Status],
			inv.PaymentTerms,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("datev: write record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("datev: flush: %w", err)
	}
	return buf.String(), nil
}

// debitAccount derives the Debitorenkonto from the numeric part of the
// customer number. A customer number without digits books on the base
// account.
func debitAccount(customer *entity.Customer) int {
	digits := strings.Builder{}
	for _, r := range customer.CustomerNumber {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return debitAccountBase
	}
	return debitAccountBase + n
}

// revenueAccount picks the Erlöskonto from the invoice's leading VAT rate.
func revenueAccount(items []*entity.InvoiceItem) int {
	rate := mainVatRate(items)
	switch {
	case rate.Equal(decimal.NewFromInt(19)):
		return revenueAccountStandard
	case rate.Equal(decimal.NewFromInt(7)):
		return revenueAccountReduced
	case rate.IsZero():
		return revenueAccountTaxFree
	default:
		return revenueAccountStandard
	}
}

// mainVatRate is the first item's rate; 19% when there are no items.
func mainVatRate(items []*entity.InvoiceItem) decimal.Decimal {
	if len(items) == 0 {
		return decimal.NewFromInt(19)
	}
	return items[0].VatRate
}

// germanDecimal formats an amount with two decimals and a comma separator.
func germanDecimal(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// bookingBatchHeader returns the 118 DATEV Buchungsstapel column names.
func bookingBatchHeader() []string {
	header := []string{
		"Umsatz (ohne Soll/Haben-Kz)",
		"Soll/Haben-Kennzeichen",
		"WKZ Umsatz",
		"Kurs",
		"Basis-Umsatz",
		"WKZ Basis-Umsatz",
		"Konto",
		"Gegenkonto (ohne BU-Schlüssel)",
		"BU-Schlüssel",
		"Belegdatum",
		"Belegfeld 1",
		"Belegfeld 2",
		"Skonto",
		"Buchungstext",
		"Postensperre",
		"Diverse Adressnummer",
		"Geschäftspartnerbank",
		"Sachverhalt",
		"Zinssperre",
		"Beleglink",
	}
	for i := 1; i <= 8; i++ {
		header = append(header,
			fmt.Sprintf("Beleginfo - Art %d", i),
			fmt.Sprintf("Beleginfo - Inhalt %d", i),
		)
	}
	header = append(header,
		"KOST1 - Kostenstelle",
		"KOST2 - Kostenstelle",
		"Kost-Menge",
		"EU-Land u. UStID",
		"EU-Steuersatz",
		"Abw. Versteuerungsart",
		"Sachverhalt L+L",
		"Funktionsergänzung L+L",
		"BU 49 Hauptfunktionstyp",
		"BU 49 Hauptfunktionsnummer",
		"BU 49 Funktionsergänzung",
	)
	for i := 1; i <= 20; i++ {
		header = append(header,
			fmt.Sprintf("Zusatzinformation - Art %d", i),
			fmt.Sprintf("Zusatzinformation - Inhalt %d", i),
		)
	}
	header = append(header,
		"Stück",
		"Gewicht",
		"Zahlweise",
		"Fälligkeit",
		"Skontotyp",
		"Auftragsnummer",
		"Buchungstyp",
		"USt-Schlüssel (Anzahlungen)",
		"EU-Land (Anzahlungen)",
		"Sachverhalt L+L (Anzahlungen)",
		"EU-Steuersatz (Anzahlungen)",
		"Erlöskonto (Anzahlungen)",
		"Herkunft-Kz",
		"Buchungs GUID",
		"KOST-Datum",
		"SEPA-Mandatsreferenz",
		"Skontosperre",
		"Gesellschaftername",
		"Beteiligtennummer",
		"Identifikationsnummer",
		"Zeichnernummer",
		"Postensperre bis",
		"Bezeichnung SoBil-Sachverhalt",
		"Kennzeichen SoBil-Buchung",
		"Festschreibung",
		"Leistungsdatum",
		"Datum Zuord. Steuerperiode",
		"Fälligkeit",
		"Generalumkehr (GU)",
		"Steuersatz",
		"Land",
	)
	return header
}
