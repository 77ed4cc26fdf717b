package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/repository"
)

var _ repository.ArchiveRepository = (*ArchiveRepo)(nil)

// ArchiveRepo implements ArchiveRepository. Records are insert-only; the
// unique constraint on invoice_id enforces one snapshot per invoice.
type ArchiveRepo struct {
	q Querier
}

// NewArchiveRepository builds the adapter. Pass a pool or tx (Querier).
func NewArchiveRepository(q Querier) *ArchiveRepo {
	return &ArchiveRepo{q: q}
}

func (r *ArchiveRepo) Create(ctx context.Context, record *entity.ArchiveRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	query := `
		INSERT INTO archive_records (id, invoice_id, encrypted_data, data_hash, file_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		record.ID, record.InvoiceID, record.EncryptedData, record.DataHash, record.FileSize, record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyArchived
		}
		return fmt.Errorf("insert archive record: %w", err)
	}
	return nil
}

func (r *ArchiveRepo) GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.ArchiveRecord, error) {
	query := `
		SELECT id, invoice_id, encrypted_data, data_hash, file_size, created_at
		FROM archive_records WHERE invoice_id = $1`
	var rec entity.ArchiveRecord
	err := r.q.QueryRow(ctx, query, invoiceID).Scan(
		&rec.ID, &rec.InvoiceID, &rec.EncryptedData, &rec.DataHash, &rec.FileSize, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get archive record: %w", err)
	}
	return &rec, nil
}
