package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implements InvoiceRepository (usable with pool or tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository builds the adapter. Pass a pool or tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, tenant_id, customer_id, invoice_number, invoice_date, due_date, format, status,
	COALESCE(leitweg_id, ''), COALESCE(buyer_reference, ''),
	subtotal, tax_amount, total,
	COALESCE(notes, ''), COALESCE(payment_terms, ''),
	xml_data, pdf_data, archived_at, COALESCE(archive_hash, ''),
	COALESCE(created_by, ''), created_at, updated_at`

func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, tenant_id, customer_id, invoice_number, invoice_date, due_date, format, status,
		                      leitweg_id, buyer_reference, subtotal, tax_amount, total,
		                      notes, payment_terms, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.TenantID, invoice.CustomerID, invoice.InvoiceNumber,
		invoice.InvoiceDate, invoice.DueDate, invoice.Format, invoice.Status,
		nullIfEmpty(invoice.LeitwegID), nullIfEmpty(invoice.BuyerReference),
		invoice.Subtotal, invoice.TaxAmount, invoice.Total,
		nullIfEmpty(invoice.Notes), nullIfEmpty(invoice.PaymentTerms),
		nullIfEmpty(invoice.CreatedBy), invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET customer_id = $2, invoice_number = $3, invoice_date = $4, due_date = $5,
		    format = $6, status = $7, leitweg_id = $8, buyer_reference = $9,
		    subtotal = $10, tax_amount = $11, total = $12,
		    notes = $13, payment_terms = $14, updated_at = $15
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.CustomerID, invoice.InvoiceNumber,
		invoice.InvoiceDate, invoice.DueDate, invoice.Format, invoice.Status,
		nullIfEmpty(invoice.LeitwegID), nullIfEmpty(invoice.BuyerReference),
		invoice.Subtotal, invoice.TaxAmount, invoice.Total,
		nullIfEmpty(invoice.Notes), nullIfEmpty(invoice.PaymentTerms),
		invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	row := r.q.QueryRow(ctx, query, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE tenant_id = $1
		ORDER BY invoice_date DESC, invoice_number DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) ListForExport(ctx context.Context, tenantID string, from, to *time.Time) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND status <> 'draft'
		  AND ($2::date IS NULL OR invoice_date >= $2)
		  AND ($3::date IS NULL OR invoice_date <= $3)
		ORDER BY invoice_date ASC, invoice_number ASC`
	rows, err := r.q.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list invoices for export: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) CreateItem(ctx context.Context, item *entity.InvoiceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_items (id, invoice_id, position, sku, description, quantity, unit, unit_price, vat_rate, line_total, tax_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.InvoiceID, item.Position, nullIfEmpty(item.SKU), item.Description,
		item.Quantity, item.Unit, item.UnitPrice, item.VatRate, item.LineTotal, item.TaxAmount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) UpdateItem(ctx context.Context, item *entity.InvoiceItem) error {
	query := `
		UPDATE invoice_items
		SET position = $2, sku = $3, description = $4, quantity = $5, unit = $6,
		    unit_price = $7, vat_rate = $8, line_total = $9, tax_amount = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Position, nullIfEmpty(item.SKU), item.Description,
		item.Quantity, item.Unit, item.UnitPrice, item.VatRate, item.LineTotal, item.TaxAmount,
	)
	if err != nil {
		return fmt.Errorf("update invoice item: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) DeleteItem(ctx context.Context, itemID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete invoice item: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetItemByID(ctx context.Context, itemID string) (*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, position, COALESCE(sku, ''), description, quantity, unit, unit_price, vat_rate, line_total, tax_amount
		FROM invoice_items WHERE id = $1`
	var it entity.InvoiceItem
	err := r.q.QueryRow(ctx, query, itemID).Scan(
		&it.ID, &it.InvoiceID, &it.Position, &it.SKU, &it.Description,
		&it.Quantity, &it.Unit, &it.UnitPrice, &it.VatRate, &it.LineTotal, &it.TaxAmount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice item: %w", err)
	}
	return &it, nil
}

func (r *InvoiceRepo) GetItemsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, position, COALESCE(sku, ''), description, quantity, unit, unit_price, vat_rate, line_total, tax_amount
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(
			&it.ID, &it.InvoiceID, &it.Position, &it.SKU, &it.Description,
			&it.Quantity, &it.Unit, &it.UnitPrice, &it.VatRate, &it.LineTotal, &it.TaxAmount,
		); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) UpdateDocuments(ctx context.Context, invoiceID string, xmlData, pdfData []byte) error {
	query := `
		UPDATE invoices
		SET xml_data   = COALESCE($2, xml_data),
		    pdf_data   = COALESCE($3, pdf_data),
		    updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, invoiceID, xmlData, pdfData, time.Now())
	if err != nil {
		return fmt.Errorf("update invoice documents: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) StampArchived(ctx context.Context, invoiceID string, archivedAt time.Time, hash string) error {
	// archived_at IS NULL keeps the stamp write-once even under races.
	query := `
		UPDATE invoices
		SET archived_at = $2, archive_hash = $3, updated_at = $2
		WHERE id = $1 AND archived_at IS NULL`
	tag, err := r.q.Exec(ctx, query, invoiceID, archivedAt, hash)
	if err != nil {
		return fmt.Errorf("stamp invoice archived: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyArchived
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.CustomerID, &inv.InvoiceNumber,
		&inv.InvoiceDate, &inv.DueDate, &inv.Format, &inv.Status,
		&inv.LeitwegID, &inv.BuyerReference,
		&inv.Subtotal, &inv.TaxAmount, &inv.Total,
		&inv.Notes, &inv.PaymentTerms,
		&inv.XMLData, &inv.PDFData, &inv.ArchivedAt, &inv.ArchiveHash,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
