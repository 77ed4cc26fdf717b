package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/repository"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/datev"
	"github.com/BadRix90/e-invoice-saas/pkg/logger"
)

// ExportUseCase produces DATEV-compatible CSV exports of a tenant's
// finalized invoices.
type ExportUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	exporter     *datev.Exporter
	log          *logger.Logger
}

func NewExportUseCase(invoiceRepo repository.InvoiceRepository, customerRepo repository.CustomerRepository, log *logger.Logger) *ExportUseCase {
	return &ExportUseCase{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		exporter:     datev.NewExporter(),
		log:          log,
	}
}

// BookingBatch builds an EXTF Buchungsstapel export. Drafts are never
// included; nil date bounds are open.
func (uc *ExportUseCase) BookingBatch(ctx context.Context, tenantID string, from, to *time.Time) (string, string, error) {
	rows, err := uc.exportRows(ctx, tenantID, from, to)
	if err != nil {
		return "", "", err
	}
	csvData, err := uc.exporter.BuildBookingBatch(rows)
	if err != nil {
		return "", "", err
	}
	name := fmt.Sprintf("EXTF_Buchungsstapel_%s.csv", time.Now().Format("20060102"))
	uc.log.Info().Str("tenant_id", tenantID).Int("invoices", len(rows)).Msg("datev booking batch exported")
	return csvData, name, nil
}

// Simple builds the flat twelve-column overview export.
func (uc *ExportUseCase) Simple(ctx context.Context, tenantID string, from, to *time.Time) (string, string, error) {
	rows, err := uc.exportRows(ctx, tenantID, from, to)
	if err != nil {
		return "", "", err
	}
	csvData, err := uc.exporter.BuildSimple(rows)
	if err != nil {
		return "", "", err
	}
	name := fmt.Sprintf("rechnungen_%s.csv", time.Now().Format("20060102"))
	uc.log.Info().Str("tenant_id", tenantID).Int("invoices", len(rows)).Msg("simple csv exported")
	return csvData, name, nil
}

func (uc *ExportUseCase) exportRows(ctx context.Context, tenantID string, from, to *time.Time) ([]datev.ExportRow, error) {
	invoices, err := uc.invoiceRepo.ListForExport(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	customers := make(map[string]*entity.Customer)
	rows := make([]datev.ExportRow, 0, len(invoices))
	for _, inv := range invoices {
		customer, ok := customers[inv.CustomerID]
		if !ok {
			customer, err = uc.customerRepo.GetByID(ctx, inv.CustomerID)
			if err != nil {
				return nil, err
			}
			customers[inv.CustomerID] = customer
		}
		if customer == nil {
			// customer row deleted after the invoice was issued; the
			// invoice alone cannot be booked
			uc.log.Warn().Str("invoice_id", inv.ID).Str("customer_id", inv.CustomerID).Msg("export skips invoice without customer")
			continue
		}
		items, err := uc.invoiceRepo.GetItemsByInvoiceID(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, datev.ExportRow{Invoice: inv, Customer: customer, Items: items})
	}
	return rows, nil
}
