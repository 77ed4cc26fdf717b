// Package billing contains the application use cases: invoice lifecycle,
// document generation, GoBD archival and the accounting exports.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BadRix90/e-invoice-saas/internal/application/dto"
	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/repository"
	"github.com/BadRix90/e-invoice-saas/internal/domain/tax"
	"github.com/BadRix90/e-invoice-saas/pkg/einvoice"
	"github.com/BadRix90/e-invoice-saas/pkg/logger"
)

const dateLayout = "2006-01-02"

// InvoiceUseCase drives the invoice lifecycle: draft → final → sent → paid,
// with cancel as the only exit. Totals are recomputed on every item change
// and locked at finalize.
type InvoiceUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	tx           TxRunner
	engine       *tax.Engine
	log          *logger.Logger
}

// NewInvoiceUseCase builds the use case.
func NewInvoiceUseCase(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	tx TxRunner,
	log *logger.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		tx:           tx,
		engine:       tax.NewEngine(),
		log:          log,
	}
}

// Create creates a new draft invoice.
func (uc *InvoiceUseCase) Create(ctx context.Context, tenantID, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.CustomerID == "" || in.InvoiceNumber == "" || in.InvoiceDate == "" {
		return nil, domain.ErrInvalidInput
	}

	customer, err := uc.tenantCustomer(ctx, tenantID, in.CustomerID)
	if err != nil {
		return nil, err
	}

	invoiceDate, err := time.Parse(dateLayout, in.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice_date: %w", domain.ErrInvalidInput)
	}
	dueDate := invoiceDate.AddDate(0, 0, customer.PaymentTermsDays)
	if in.DueDate != "" {
		dueDate, err = time.Parse(dateLayout, in.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date: %w", domain.ErrInvalidInput)
		}
	}

	format := in.Format
	if format == "" {
		format = entity.FormatZUGFeRD
	}
	if format != entity.FormatXRechnung && format != entity.FormatZUGFeRD {
		return nil, fmt.Errorf("unknown format %q: %w", in.Format, domain.ErrInvalidInput)
	}

	leitwegID := in.LeitwegID
	if leitwegID == "" {
		leitwegID = customer.LeitwegID
	}

	now := time.Now()
	invoice := &entity.Invoice{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		CustomerID:     customer.ID,
		InvoiceNumber:  in.InvoiceNumber,
		InvoiceDate:    invoiceDate,
		DueDate:        dueDate,
		Format:         format,
		Status:         entity.StatusDraft,
		LeitwegID:      leitwegID,
		BuyerReference: in.BuyerReference,
		Subtotal:       decimal.Zero,
		TaxAmount:      decimal.Zero,
		Total:          decimal.Zero,
		Notes:          in.Notes,
		PaymentTerms:   in.PaymentTerms,
		CreatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	uc.log.Info().Str("invoice_id", invoice.ID).Str("invoice_number", invoice.InvoiceNumber).Msg("invoice draft created")
	return uc.toResponse(invoice, customer, nil), nil
}

// GetByID loads an invoice with its items, tenant-scoped.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, tenantID, invoiceID string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.tenantInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	customer, _ := uc.customerRepo.GetByID(ctx, invoice.CustomerID)
	return uc.toResponse(invoice, customer, items), nil
}

// List returns a tenant's invoices, newest first.
func (uc *InvoiceUseCase) List(ctx context.Context, tenantID string, page dto.PageRequest) ([]*dto.InvoiceResponse, error) {
	page.DefaultPage()
	invoices, err := uc.invoiceRepo.ListByTenant(ctx, tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		out = append(out, uc.toResponse(invoice, nil, nil))
	}
	return out, nil
}

// AddItem appends a line to a draft invoice and recomputes the totals.
func (uc *InvoiceUseCase) AddItem(ctx context.Context, tenantID, invoiceID string, in dto.InvoiceItemRequest) (*dto.InvoiceResponse, error) {
	invoice, err := uc.editableInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	item, err := uc.itemFromRequest(invoice.ID, in)
	if err != nil {
		return nil, err
	}

	err = uc.tx.RunInvoice(ctx, func(repo repository.InvoiceRepository) error {
		items, err := repo.GetItemsByInvoiceID(ctx, invoice.ID)
		if err != nil {
			return err
		}
		if item.Position == 0 {
			item.Position = len(items) + 1
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			return err
		}
		return uc.storeTotals(ctx, repo, invoice, append(items, item))
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, tenantID, invoice.ID)
}

// UpdateItem replaces a line of a draft invoice and recomputes the totals.
func (uc *InvoiceUseCase) UpdateItem(ctx context.Context, tenantID, invoiceID, itemID string, in dto.InvoiceItemRequest) (*dto.InvoiceResponse, error) {
	invoice, err := uc.editableInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	updated, err := uc.itemFromRequest(invoice.ID, in)
	if err != nil {
		return nil, err
	}

	err = uc.tx.RunInvoice(ctx, func(repo repository.InvoiceRepository) error {
		existing, err := repo.GetItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if existing == nil || existing.InvoiceID != invoice.ID {
			return domain.ErrNotFound
		}
		updated.ID = existing.ID
		if updated.Position == 0 {
			updated.Position = existing.Position
		}
		if err := repo.UpdateItem(ctx, updated); err != nil {
			return err
		}
		items, err := repo.GetItemsByInvoiceID(ctx, invoice.ID)
		if err != nil {
			return err
		}
		return uc.storeTotals(ctx, repo, invoice, items)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, tenantID, invoice.ID)
}

// DeleteItem removes a line from a draft invoice and recomputes the totals.
func (uc *InvoiceUseCase) DeleteItem(ctx context.Context, tenantID, invoiceID, itemID string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.editableInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	err = uc.tx.RunInvoice(ctx, func(repo repository.InvoiceRepository) error {
		existing, err := repo.GetItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if existing == nil || existing.InvoiceID != invoice.ID {
			return domain.ErrNotFound
		}
		if err := repo.DeleteItem(ctx, itemID); err != nil {
			return err
		}
		items, err := repo.GetItemsByInvoiceID(ctx, invoice.ID)
		if err != nil {
			return err
		}
		return uc.storeTotals(ctx, repo, invoice, items)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, tenantID, invoice.ID)
}

// Finalize locks a draft: totals are recomputed one last time and the status
// moves to final. At least one item is required.
func (uc *InvoiceUseCase) Finalize(ctx context.Context, tenantID, invoiceID string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.tenantInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != entity.StatusDraft {
		return nil, domain.ErrNotDraft
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNoItems
	}

	invoice.Subtotal, invoice.TaxAmount, invoice.Total = uc.engine.ComputeTotals(items)
	invoice.Status = entity.StatusFinal
	invoice.UpdatedAt = time.Now()
	if err := uc.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	uc.log.Info().Str("invoice_id", invoice.ID).Str("total", invoice.Total.StringFixed(2)).Msg("invoice finalized")
	return uc.GetByID(ctx, tenantID, invoice.ID)
}

// MarkSent moves a finalized invoice to sent.
func (uc *InvoiceUseCase) MarkSent(ctx context.Context, tenantID, invoiceID string) (*dto.InvoiceResponse, error) {
	return uc.transition(ctx, tenantID, invoiceID, entity.StatusSent, entity.StatusFinal, entity.StatusSent)
}

// MarkPaid moves a finalized or sent invoice to paid.
func (uc *InvoiceUseCase) MarkPaid(ctx context.Context, tenantID, invoiceID string) (*dto.InvoiceResponse, error) {
	return uc.transition(ctx, tenantID, invoiceID, entity.StatusPaid, entity.StatusFinal, entity.StatusSent)
}

// Cancel voids an invoice in any non-cancelled state.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, tenantID, invoiceID string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.tenantInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == entity.StatusCancelled {
		return nil, domain.ErrCancelled
	}
	invoice.Status = entity.StatusCancelled
	invoice.UpdatedAt = time.Now()
	if err := uc.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, tenantID, invoice.ID)
}

// Duplicate creates a fresh draft from an existing invoice: same customer,
// format, routing and items, dated today with the customer's payment terms.
// An empty newNumber derives one from the original.
func (uc *InvoiceUseCase) Duplicate(ctx context.Context, tenantID, invoiceID, userID, newNumber string) (*dto.InvoiceResponse, error) {
	original, err := uc.tenantInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	customer, err := uc.tenantCustomer(ctx, tenantID, original.CustomerID)
	if err != nil {
		return nil, err
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(ctx, original.ID)
	if err != nil {
		return nil, err
	}

	if newNumber == "" {
		newNumber = original.InvoiceNumber + "-KOPIE"
	}
	today := time.Now().Truncate(24 * time.Hour)
	now := time.Now()
	duplicate := &entity.Invoice{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		CustomerID:     original.CustomerID,
		InvoiceNumber:  newNumber,
		InvoiceDate:    today,
		DueDate:        today.AddDate(0, 0, customer.PaymentTermsDays),
		Format:         original.Format,
		Status:         entity.StatusDraft,
		LeitwegID:      original.LeitwegID,
		BuyerReference: original.BuyerReference,
		Notes:          original.Notes,
		PaymentTerms:   original.PaymentTerms,
		CreatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = uc.tx.RunInvoice(ctx, func(repo repository.InvoiceRepository) error {
		if err := repo.Create(ctx, duplicate); err != nil {
			return err
		}
		copies := make([]*entity.InvoiceItem, 0, len(items))
		for _, item := range items {
			copy := &entity.InvoiceItem{
				ID:          uuid.New().String(),
				InvoiceID:   duplicate.ID,
				Position:    item.Position,
				SKU:         item.SKU,
				Description: item.Description,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
				UnitPrice:   item.UnitPrice,
				VatRate:     item.VatRate,
			}
			uc.engine.ComputeLine(copy)
			if err := repo.CreateItem(ctx, copy); err != nil {
				return err
			}
			copies = append(copies, copy)
		}
		return uc.storeTotals(ctx, repo, duplicate, copies)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("original", original.InvoiceNumber).Str("duplicate", newNumber).Msg("invoice duplicated")
	return uc.GetByID(ctx, tenantID, duplicate.ID)
}

// ── internals ─────────────────────────────────────────────────────────────────

func (uc *InvoiceUseCase) transition(ctx context.Context, tenantID, invoiceID, target string, allowed ...string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.tenantInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	ok := false
	for _, status := range allowed {
		if invoice.Status == status {
			ok = true
			break
		}
	}
	if !ok {
		return nil, domain.ErrNotFinalized
	}
	invoice.Status = target
	invoice.UpdatedAt = time.Now()
	if err := uc.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, tenantID, invoice.ID)
}

func (uc *InvoiceUseCase) tenantInvoice(ctx context.Context, tenantID, invoiceID string) (*entity.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil || invoice.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (uc *InvoiceUseCase) tenantCustomer(ctx context.Context, tenantID, customerID string) (*entity.Customer, error) {
	customer, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return customer, nil
}

func (uc *InvoiceUseCase) editableInvoice(ctx context.Context, tenantID, invoiceID string) (*entity.Invoice, error) {
	invoice, err := uc.tenantInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != entity.StatusDraft {
		return nil, domain.ErrNotDraft
	}
	return invoice, nil
}

func (uc *InvoiceUseCase) itemFromRequest(invoiceID string, in dto.InvoiceItemRequest) (*entity.InvoiceItem, error) {
	if in.Description == "" || !in.Quantity.IsPositive() || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if !einvoice.IsValidVatRate(in.VatRate) {
		return nil, fmt.Errorf("unsupported vat rate %s: %w", in.VatRate.String(), domain.ErrInvalidInput)
	}
	unit := in.Unit
	if unit == "" {
		unit = einvoice.UnitPiece
	}
	if !einvoice.IsValidUnitCode(unit) {
		return nil, fmt.Errorf("unsupported unit code %q: %w", in.Unit, domain.ErrInvalidInput)
	}

	item := &entity.InvoiceItem{
		ID:          uuid.New().String(),
		InvoiceID:   invoiceID,
		Position:    in.Position,
		SKU:         in.SKU,
		Description: in.Description,
		Quantity:    in.Quantity.Round(3),
		Unit:        unit,
		UnitPrice:   in.UnitPrice.Round(2),
		VatRate:     in.VatRate.Round(2),
	}
	uc.engine.ComputeLine(item)
	return item, nil
}

func (uc *InvoiceUseCase) storeTotals(ctx context.Context, repo repository.InvoiceRepository, invoice *entity.Invoice, items []*entity.InvoiceItem) error {
	invoice.Subtotal, invoice.TaxAmount, invoice.Total = uc.engine.ComputeTotals(items)
	invoice.UpdatedAt = time.Now()
	return repo.Update(ctx, invoice)
}

func (uc *InvoiceUseCase) toResponse(invoice *entity.Invoice, customer *entity.Customer, items []*entity.InvoiceItem) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:             invoice.ID,
		TenantID:       invoice.TenantID,
		CustomerID:     invoice.CustomerID,
		InvoiceNumber:  invoice.InvoiceNumber,
		InvoiceDate:    invoice.InvoiceDate.Format(dateLayout),
		DueDate:        invoice.DueDate.Format(dateLayout),
		Format:         invoice.Format,
		Status:         invoice.Status,
		LeitwegID:      invoice.LeitwegID,
		BuyerReference: invoice.BuyerReference,
		Subtotal:       invoice.Subtotal,
		TaxAmount:      invoice.TaxAmount,
		Total:          invoice.Total,
		Notes:          invoice.Notes,
		PaymentTerms:   invoice.PaymentTerms,
		ArchiveHash:    invoice.ArchiveHash,
		Items:          []dto.InvoiceItemResponse{},
	}
	if invoice.ArchivedAt != nil {
		resp.ArchivedAt = invoice.ArchivedAt.UTC().Format(time.RFC3339)
	}
	if customer != nil {
		resp.CustomerName = customer.DisplayName()
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          item.ID,
			Position:    item.Position,
			SKU:         item.SKU,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			VatRate:     item.VatRate,
			LineTotal:   item.LineTotal,
			TaxAmount:   item.TaxAmount,
		})
	}
	return resp
}
