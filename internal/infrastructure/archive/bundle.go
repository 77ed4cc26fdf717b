// Package archive implements the GoBD-compliant long-term storage of
// finalized invoices: a zip bundle of the invoice documents plus metadata,
// hashed with SHA-256 and sealed with authenticated encryption.
package archive

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
)

// Bundle entry names. metadata.json is always present; the documents only
// when they were generated before archival.
const (
	MetadataEntry = "metadata.json"
	PDFEntry      = "invoice.pdf"
	XMLEntry      = "invoice.xml"
)

// Metadata is the snapshot of invoice master data stored inside the bundle,
// so the archive is interpretable without the live database.
type Metadata struct {
	InvoiceID     string           `json:"invoice_id"`
	InvoiceNumber string           `json:"invoice_number"`
	InvoiceDate   string           `json:"invoice_date"` // YYYY-MM-DD
	DueDate       string           `json:"due_date"`
	Status        string           `json:"status"`
	Format        string           `json:"format"`
	Customer      MetadataCustomer `json:"customer"`
	Subtotal      string           `json:"subtotal"`
	TaxAmount     string           `json:"tax_amount"`
	Total         string           `json:"total"`
	Currency      string           `json:"currency"`
	Items         []MetadataItem   `json:"items"`
	ArchivedAt    string           `json:"archived_at"` // RFC 3339
}

// MetadataCustomer identifies the invoice recipient inside the snapshot.
type MetadataCustomer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MetadataItem is one invoice line inside the snapshot.
type MetadataItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	VatRate     string `json:"vat_rate"`
	Total       string `json:"total"`
}

// BuildBundle packs the invoice into an in-memory zip: metadata.json always,
// invoice.pdf and invoice.xml only if present on the invoice.
func BuildBundle(invoice *entity.Invoice, customer *entity.Customer, items []*entity.InvoiceItem, archivedAt time.Time) ([]byte, error) {
	meta := Metadata{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		InvoiceDate:   invoice.InvoiceDate.Format("2006-01-02"),
		DueDate:       invoice.DueDate.Format("2006-01-02"),
		Status:        invoice.Status,
		Format:        invoice.Format,
		Customer: MetadataCustomer{
			ID:    invoice.CustomerID,
			Name:  customer.DisplayName(),
			Email: customer.Email,
		},
		Subtotal:  invoice.Subtotal.StringFixed(2),
		TaxAmount: invoice.TaxAmount.StringFixed(2),
		Total:     invoice.Total.StringFixed(2),
		Currency:  "EUR",
		ArchivedAt: archivedAt.UTC().Format(time.RFC3339),
	}
	for _, item := range items {
		meta.Items = append(meta.Items, MetadataItem{
			Description: item.Description,
			Quantity:    item.Quantity.StringFixed(3),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			VatRate:     item.VatRate.StringFixed(2),
			Total:       item.LineTotal.StringFixed(2),
		})
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("archive: marshal metadata: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	writeEntry := func(name string, data []byte) error {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("archive: create entry %s: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("archive: write entry %s: %w", name, err)
		}
		return nil
	}

	if err := writeEntry(MetadataEntry, metaBytes); err != nil {
		return nil, err
	}
	if len(invoice.PDFData) > 0 {
		if err := writeEntry(PDFEntry, invoice.PDFData); err != nil {
			return nil, err
		}
	}
	if len(invoice.XMLData) > 0 {
		if err := writeEntry(XMLEntry, invoice.XMLData); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: close bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadBundle opens a plaintext bundle and returns its entries by name.
func ReadBundle(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("archive: open bundle: %w", err)
	}
	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("archive: open entry %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("archive: read entry %s: %w", f.Name, err)
		}
		entries[f.Name] = content
	}
	if _, ok := entries[MetadataEntry]; !ok {
		return nil, fmt.Errorf("archive: bundle lacks %s", MetadataEntry)
	}
	return entries, nil
}

// HashBundle returns the SHA-256 hex digest of the plaintext bundle. This is
// the integrity anchor recorded alongside the encrypted blob.
func HashBundle(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
