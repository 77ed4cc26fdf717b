package billing

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/archive"
)

func newArchiveUC(t *testing.T, env *testEnv) *ArchiveUseCase {
	t.Helper()
	cipher, err := archive.NewCipher("test-archive-secret")
	require.NoError(t, err)
	return NewArchiveUseCase(env.invoiceRepo, env.customerRepo, env.archiveRepo, env.tx, cipher, env.log)
}

// finalizedInvoice creates and finalizes a one-line invoice.
func finalizedInvoice(t *testing.T, env *testEnv) string {
	t.Helper()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)
	_, err := env.invoiceUC().Finalize(ctx, env.tenant.ID, draft.ID)
	require.NoError(t, err)
	return draft.ID
}

func TestArchive_StampsInvoiceOnce(t *testing.T) {
	env := newTestEnv()
	uc := newArchiveUC(t, env)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	resp, err := uc.Archive(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)
	assert.Len(t, resp.Hash, 64)
	assert.Positive(t, resp.FileSize)

	stored, err := env.invoiceRepo.GetByID(ctx, invoiceID)
	require.NoError(t, err)
	require.NotNil(t, stored.ArchivedAt)
	assert.Equal(t, resp.Hash, stored.ArchiveHash)

	_, err = uc.Archive(ctx, env.tenant.ID, invoiceID)
	assert.ErrorIs(t, err, domain.ErrAlreadyArchived)
}

func TestArchive_RejectsDrafts(t *testing.T) {
	env := newTestEnv()
	uc := newArchiveUC(t, env)
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	_, err := uc.Archive(ctx, env.tenant.ID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrDraftNotArchivable)
}

func TestVerify_ValidArchive(t *testing.T) {
	env := newTestEnv()
	uc := newArchiveUC(t, env)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	archived, err := uc.Archive(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)

	report, err := uc.Verify(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Error)
	assert.Equal(t, archived.Hash, report.Hash)
	assert.Equal(t, archived.FileSize, report.FileSize)
}

func TestVerify_NotArchived(t *testing.T) {
	env := newTestEnv()
	uc := newArchiveUC(t, env)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	report, err := uc.Verify(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, "Rechnung ist nicht archiviert.", report.Error)
}

func TestVerify_CorruptedCiphertext(t *testing.T) {
	env := newTestEnv()
	uc := newArchiveUC(t, env)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)
	_, err := uc.Archive(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)

	// flip one bit in the stored blob
	record := env.archiveRepo.records[invoiceID]
	record.EncryptedData[len(record.EncryptedData)/2] ^= 0x01

	report, err := uc.Verify(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, "Entschlüsselung fehlgeschlagen.", report.Error)
}

func TestVerify_HashMismatchAfterReencryption(t *testing.T) {
	env := newTestEnv()
	uc := newArchiveUC(t, env)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)
	_, err := uc.Archive(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)

	// An attacker with the key swaps the plaintext but cannot forge the
	// recorded hash.
	cipher, err := archive.NewCipher("test-archive-secret")
	require.NoError(t, err)
	record := env.archiveRepo.records[invoiceID]
	forged, err := cipher.Seal([]byte("manipulierte daten"))
	require.NoError(t, err)
	record.EncryptedData = forged

	report, err := uc.Verify(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, "Daten wurden manipuliert!", report.Error)
	assert.Equal(t, record.DataHash, report.ExpectedHash)
	assert.NotEmpty(t, report.ActualHash)
	assert.NotEqual(t, report.ExpectedHash, report.ActualHash)
}

func TestRetrieve_ReturnsReadableBundle(t *testing.T) {
	env := newTestEnv()
	uc := newArchiveUC(t, env)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)
	_, err := uc.Archive(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)

	data, name, err := uc.Retrieve(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-0001_archiv.zip", name)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["metadata.json"])
}

func TestRetrieve_RefusesTamperedData(t *testing.T) {
	env := newTestEnv()
	uc := newArchiveUC(t, env)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)
	_, err := uc.Archive(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)

	record := env.archiveRepo.records[invoiceID]
	record.EncryptedData[0] ^= 0xFF

	_, _, err = uc.Retrieve(ctx, env.tenant.ID, invoiceID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRetrieve_NotArchived(t *testing.T) {
	env := newTestEnv()
	uc := newArchiveUC(t, env)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	_, _, err := uc.Retrieve(ctx, env.tenant.ID, invoiceID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
