package billing

import (
	"context"

	"github.com/BadRix90/e-invoice-saas/internal/application/dto"
	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/repository"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/validator"
	"github.com/BadRix90/e-invoice-saas/pkg/logger"
)

// DocumentUseCase generates the legally binding invoice documents: the CII
// XML, the hybrid ZUGFeRD PDF, and the optional external conformance check.
// Drafts are never rendered; finalize comes first.
type DocumentUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	tenantRepo   repository.TenantRepository
	builder      XMLBuilder
	renderer     PDFRenderer
	embedder     XMLEmbedder
	checker      ConformanceValidator
	mailer       InvoiceMailer
	log          *logger.Logger
}

// NewDocumentUseCase builds the use case. checker and mailer may be nil when
// the deployment has no validator or SMTP configured.
func NewDocumentUseCase(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	tenantRepo repository.TenantRepository,
	builder XMLBuilder,
	renderer PDFRenderer,
	embedder XMLEmbedder,
	checker ConformanceValidator,
	mailer InvoiceMailer,
	log *logger.Logger,
) *DocumentUseCase {
	return &DocumentUseCase{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		tenantRepo:   tenantRepo,
		builder:      builder,
		renderer:     renderer,
		embedder:     embedder,
		checker:      checker,
		mailer:       mailer,
		log:          log,
	}
}

// GenerateXML renders the XRechnung document, stores it on the invoice and
// returns the XML bytes with the download filename.
func (uc *DocumentUseCase) GenerateXML(ctx context.Context, tenantID, invoiceID string) ([]byte, string, error) {
	invoice, tenant, customer, items, err := uc.loadDocumentInput(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, "", err
	}

	xml, err := uc.builder.BuildInvoiceXML(invoice, tenant, customer, items)
	if err != nil {
		return nil, "", err
	}
	xmlBytes := []byte(xml)

	if err := uc.invoiceRepo.UpdateDocuments(ctx, invoice.ID, xmlBytes, nil); err != nil {
		return nil, "", err
	}
	uc.log.Info().Str("invoice_id", invoice.ID).Int("bytes", len(xmlBytes)).Msg("xrechnung generated")
	return xmlBytes, invoice.InvoiceNumber + ".xml", nil
}

// GeneratePDF renders the ZUGFeRD hybrid: the visual page with the CII XML
// embedded as factur-x.xml. The attachment step failing fails the whole
// generation.
func (uc *DocumentUseCase) GeneratePDF(ctx context.Context, tenantID, invoiceID string) ([]byte, string, error) {
	invoice, tenant, customer, items, err := uc.loadDocumentInput(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, "", err
	}

	xml, err := uc.builder.BuildInvoiceXML(invoice, tenant, customer, items)
	if err != nil {
		return nil, "", err
	}
	page, err := uc.renderer.Render(invoice, tenant, customer, items)
	if err != nil {
		return nil, "", err
	}
	hybrid, err := uc.embedder.Embed(page, []byte(xml))
	if err != nil {
		return nil, "", err
	}

	if err := uc.invoiceRepo.UpdateDocuments(ctx, invoice.ID, []byte(xml), hybrid); err != nil {
		return nil, "", err
	}
	uc.log.Info().Str("invoice_id", invoice.ID).Int("bytes", len(hybrid)).Msg("zugferd generated")
	return hybrid, invoice.InvoiceNumber + ".pdf", nil
}

// Validate runs the external conformance check against the invoice XML,
// generating it first when missing. An unreachable validator logs a warning
// and passes; the outcome tag records the skip.
func (uc *DocumentUseCase) Validate(ctx context.Context, tenantID, invoiceID string) (*dto.ValidationResponse, error) {
	if uc.checker == nil {
		return &dto.ValidationResponse{
			Outcome:  validator.OutcomeUnreachable,
			IsValid:  true,
			Warnings: []string{"Validator nicht konfiguriert - Validierung übersprungen"},
		}, nil
	}

	xmlBytes, _, err := uc.GenerateXML(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	result := uc.checker.Validate(ctx, xmlBytes)
	switch result.Outcome {
	case validator.OutcomeValid:
		uc.log.Info().Str("invoice_id", invoiceID).Msg("conformance check passed")
	case validator.OutcomeInvalid:
		uc.log.Warn().Str("invoice_id", invoiceID).Strs("errors", result.Errors).Msg("conformance check failed")
	case validator.OutcomeUnreachable:
		uc.log.Warn().Str("invoice_id", invoiceID).Msg("conformance check skipped, validator unreachable")
	}

	return &dto.ValidationResponse{
		Outcome:  result.Outcome,
		IsValid:  result.IsValid,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}, nil
}

// Send mails the invoice document to the customer (or an explicit
// recipient), generating the document first when missing, then marks the
// invoice as sent.
func (uc *DocumentUseCase) Send(ctx context.Context, tenantID, invoiceID, recipient string) error {
	if uc.mailer == nil {
		return domain.ErrInvalidInput
	}
	invoice, tenant, customer, _, err := uc.loadDocumentInput(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}

	// Make sure the attachment exists.
	if invoice.Format == entity.FormatZUGFeRD && len(invoice.PDFData) == 0 {
		if _, _, err := uc.GeneratePDF(ctx, tenantID, invoiceID); err != nil {
			return err
		}
	} else if invoice.Format == entity.FormatXRechnung && len(invoice.XMLData) == 0 {
		if _, _, err := uc.GenerateXML(ctx, tenantID, invoiceID); err != nil {
			return err
		}
	}
	invoice, err = uc.invoiceRepo.GetByID(ctx, invoice.ID)
	if err != nil {
		return err
	}

	if err := uc.mailer.SendInvoice(invoice, tenant, customer, recipient); err != nil {
		return err
	}

	if invoice.Status == entity.StatusFinal {
		invoice.Status = entity.StatusSent
		if err := uc.invoiceRepo.Update(ctx, invoice); err != nil {
			return err
		}
	}
	uc.log.Info().Str("invoice_id", invoice.ID).Msg("invoice sent by email")
	return nil
}

// loadDocumentInput loads everything document generation needs and rejects
// drafts.
func (uc *DocumentUseCase) loadDocumentInput(ctx context.Context, tenantID, invoiceID string) (*entity.Invoice, *entity.Tenant, *entity.Customer, []*entity.InvoiceItem, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if invoice == nil || invoice.TenantID != tenantID {
		return nil, nil, nil, nil, domain.ErrNotFound
	}
	if invoice.Status == entity.StatusDraft {
		return nil, nil, nil, nil, domain.ErrNotFinalized
	}

	tenant, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if tenant == nil {
		return nil, nil, nil, nil, domain.ErrNotFound
	}
	customer, err := uc.customerRepo.GetByID(ctx, invoice.CustomerID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if customer == nil {
		return nil, nil, nil, nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return invoice, tenant, customer, items, nil
}
