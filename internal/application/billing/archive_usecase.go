package billing

import (
	"context"
	"time"

	"github.com/BadRix90/e-invoice-saas/internal/application/dto"
	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/repository"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/archive"
	"github.com/BadRix90/e-invoice-saas/pkg/logger"
)

// ArchiveUseCase implements the GoBD archival flow: bundle the invoice
// documents into a zip, hash the plaintext, encrypt, store, stamp the
// invoice. Verify and Retrieve run the flow backwards.
type ArchiveUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	archiveRepo  repository.ArchiveRepository
	tx           TxRunner
	cipher       *archive.Cipher
	log          *logger.Logger
}

// NewArchiveUseCase builds the use case.
func NewArchiveUseCase(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	archiveRepo repository.ArchiveRepository,
	tx TxRunner,
	cipher *archive.Cipher,
	log *logger.Logger,
) *ArchiveUseCase {
	return &ArchiveUseCase{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		archiveRepo:  archiveRepo,
		tx:           tx,
		cipher:       cipher,
		log:          log,
	}
}

// Archive snapshots a non-draft invoice. Exactly once per invoice: a second
// call fails with ErrAlreadyArchived.
func (uc *ArchiveUseCase) Archive(ctx context.Context, tenantID, invoiceID string) (*dto.ArchiveResponse, error) {
	invoice, err := uc.tenantInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.IsArchived() {
		return nil, domain.ErrAlreadyArchived
	}
	if invoice.Status == entity.StatusDraft {
		return nil, domain.ErrDraftNotArchivable
	}

	customer, err := uc.customerRepo.GetByID(ctx, invoice.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	archivedAt := time.Now()
	bundle, err := archive.BuildBundle(invoice, customer, items, archivedAt)
	if err != nil {
		return nil, err
	}
	hash := archive.HashBundle(bundle)
	encrypted, err := uc.cipher.Seal(bundle)
	if err != nil {
		return nil, err
	}

	record := &entity.ArchiveRecord{
		InvoiceID:     invoice.ID,
		EncryptedData: encrypted,
		DataHash:      hash,
		FileSize:      int64(len(bundle)),
		CreatedAt:     archivedAt,
	}
	err = uc.tx.RunArchive(ctx, func(invoiceRepo repository.InvoiceRepository, archiveRepo repository.ArchiveRepository) error {
		if err := archiveRepo.Create(ctx, record); err != nil {
			return err
		}
		return invoiceRepo.StampArchived(ctx, invoice.ID, archivedAt, hash)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", invoice.ID).
		Str("hash", hash).
		Int64("file_size", record.FileSize).
		Msg("invoice archived")

	return &dto.ArchiveResponse{
		ArchiveID:  record.ID,
		Hash:       hash,
		ArchivedAt: archivedAt.UTC().Format(time.RFC3339),
		FileSize:   record.FileSize,
	}, nil
}

// Verify decrypts the stored blob and compares the recomputed hash with the
// recorded one. All failure modes come back as a report, not an error:
// callers always get a verdict.
func (uc *ArchiveUseCase) Verify(ctx context.Context, tenantID, invoiceID string) (*dto.ArchiveVerifyResponse, error) {
	invoice, err := uc.tenantInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.IsArchived() {
		return &dto.ArchiveVerifyResponse{Valid: false, Error: "Rechnung ist nicht archiviert."}, nil
	}

	record, err := uc.archiveRepo.GetByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &dto.ArchiveVerifyResponse{Valid: false, Error: "Archiv-Eintrag nicht gefunden."}, nil
	}

	plaintext, err := uc.cipher.Open(record.EncryptedData)
	if err != nil {
		return &dto.ArchiveVerifyResponse{Valid: false, Error: "Entschlüsselung fehlgeschlagen."}, nil
	}

	actualHash := archive.HashBundle(plaintext)
	if actualHash != record.DataHash {
		uc.log.Error().
			Str("invoice_id", invoice.ID).
			Str("expected", record.DataHash).
			Str("actual", actualHash).
			Msg("archive integrity violation")
		return &dto.ArchiveVerifyResponse{
			Valid:        false,
			Error:        "Daten wurden manipuliert!",
			ExpectedHash: record.DataHash,
			ActualHash:   actualHash,
		}, nil
	}

	return &dto.ArchiveVerifyResponse{
		Valid:      true,
		Hash:       actualHash,
		ArchivedAt: record.CreatedAt.UTC().Format(time.RFC3339),
		FileSize:   record.FileSize,
	}, nil
}

// Retrieve returns the decrypted plaintext bundle for download. Retrieval
// refuses to hand out data that fails the integrity check.
func (uc *ArchiveUseCase) Retrieve(ctx context.Context, tenantID, invoiceID string) ([]byte, string, error) {
	invoice, err := uc.tenantInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if !invoice.IsArchived() {
		return nil, "", domain.ErrNotFound
	}
	record, err := uc.archiveRepo.GetByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return nil, "", err
	}
	if record == nil {
		return nil, "", domain.ErrNotFound
	}

	plaintext, err := uc.cipher.Open(record.EncryptedData)
	if err != nil {
		return nil, "", domain.ErrConflict
	}
	if archive.HashBundle(plaintext) != record.DataHash {
		return nil, "", domain.ErrConflict
	}
	return plaintext, invoice.InvoiceNumber + "_archiv.zip", nil
}

func (uc *ArchiveUseCase) tenantInvoice(ctx context.Context, tenantID, invoiceID string) (*entity.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil || invoice.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}
