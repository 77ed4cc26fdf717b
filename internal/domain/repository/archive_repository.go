package repository

import (
	"context"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
)

// ArchiveRepository is the persistence port for GoBD archive records.
// Records are immutable: there is no update or delete.
type ArchiveRepository interface {
	// Create persists the record. A second record for the same invoice must
	// fail with domain.ErrAlreadyArchived, enforced by a unique constraint
	// on invoice_id so concurrent check-then-act races cannot slip through.
	Create(ctx context.Context, record *entity.ArchiveRecord) error
	GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.ArchiveRecord, error)
}
