package repository

import (
	"context"
	"time"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
)

// InvoiceRepository is the persistence port for invoices and their items.
// Lookups return (nil, nil) when no row exists.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	Update(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Invoice, error)
	// ListForExport returns all non-draft invoices of a tenant, oldest first,
	// optionally restricted to an invoice-date range. Nil bounds are open.
	ListForExport(ctx context.Context, tenantID string, from, to *time.Time) ([]*entity.Invoice, error)

	CreateItem(ctx context.Context, item *entity.InvoiceItem) error
	UpdateItem(ctx context.Context, item *entity.InvoiceItem) error
	DeleteItem(ctx context.Context, itemID string) error
	GetItemByID(ctx context.Context, itemID string) (*entity.InvoiceItem, error)
	// GetItemsByInvoiceID returns the items in position order.
	GetItemsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error)

	// UpdateDocuments persists the most recently generated XML/PDF bytes.
	// Nil slices leave the stored document untouched.
	UpdateDocuments(ctx context.Context, invoiceID string, xmlData, pdfData []byte) error

	// StampArchived sets the archival timestamp and content hash. The stamp
	// is written exactly once; the archive record itself lives in
	// ArchiveRepository.
	StampArchived(ctx context.Context, invoiceID string, archivedAt time.Time, hash string) error
}
