package billing

import (
	"context"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/repository"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/validator"
)

// TxRunner executes callbacks inside one database transaction.
type TxRunner interface {
	// RunInvoice binds an invoice repository to the transaction. Used where
	// an item mutation and the recomputed invoice totals must land together.
	RunInvoice(ctx context.Context, fn func(invoiceRepo repository.InvoiceRepository) error) error

	// RunArchive binds invoice and archive repositories to the transaction,
	// so the archive record and the archival stamp commit atomically.
	RunArchive(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		archiveRepo repository.ArchiveRepository,
	) error) error
}

// XMLBuilder renders an invoice as XRechnung CII XML.
type XMLBuilder interface {
	BuildInvoiceXML(invoice *entity.Invoice, tenant *entity.Tenant, customer *entity.Customer, items []*entity.InvoiceItem) (string, error)
}

// PDFRenderer renders the human-readable invoice page.
type PDFRenderer interface {
	Render(invoice *entity.Invoice, tenant *entity.Tenant, customer *entity.Customer, items []*entity.InvoiceItem) ([]byte, error)
}

// XMLEmbedder produces the hybrid ZUGFeRD document from PDF + XML.
type XMLEmbedder interface {
	Embed(pdfData, xmlData []byte) ([]byte, error)
}

// ConformanceValidator submits XML to an external conformance checker.
type ConformanceValidator interface {
	Validate(ctx context.Context, xmlContent []byte) validator.Result
}

// InvoiceMailer delivers an invoice with its document attached.
type InvoiceMailer interface {
	SendInvoice(invoice *entity.Invoice, tenant *entity.Tenant, customer *entity.Customer, recipient string) error
}
