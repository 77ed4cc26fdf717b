package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice lifecycle statuses.
const (
	StatusDraft     = "draft"     // editable, never archivable or exportable
	StatusFinal     = "final"     // totals locked, documents may be generated
	StatusSent      = "sent"      // delivered to the customer
	StatusPaid      = "paid"      // settled
	StatusCancelled = "cancelled" // storniert
)

// Output formats for a legally binding invoice document.
const (
	FormatXRechnung = "xrechnung" // structured CII XML only
	FormatZUGFeRD   = "zugferd"   // hybrid PDF with embedded CII XML
)

// Invoice is the header of a tenant-scoped invoice.
// Subtotal, TaxAmount and Total are derived from the line items and are only
// written through the tax engine, never set directly by callers.
type Invoice struct {
	ID            string
	TenantID      string
	CustomerID    string
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       time.Time
	Format        string // FormatXRechnung | FormatZUGFeRD
	Status        string // see Status* constants

	// XRechnung routing: LeitwegID wins over BuyerReference when both are set.
	LeitwegID      string
	BuyerReference string

	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal

	Notes        string
	PaymentTerms string

	// Most recently generated documents; bundled verbatim by the archive.
	XMLData []byte
	PDFData []byte

	// GoBD archival stamp. ArchivedAt set exactly once; ArchiveHash is the
	// SHA-256 hex digest of the plaintext archive bundle.
	ArchivedAt  *time.Time
	ArchiveHash string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsArchived reports whether the invoice carries an archival stamp.
func (i *Invoice) IsArchived() bool {
	return i.ArchivedAt != nil
}
