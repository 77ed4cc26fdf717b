package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/validator"
)

func newDocumentUC(env *testEnv, checker ConformanceValidator, mailer InvoiceMailer) *DocumentUseCase {
	return NewDocumentUseCase(
		env.invoiceRepo, env.customerRepo, env.tenantRepo,
		&stubBuilder{}, &stubRenderer{}, &stubEmbedder{},
		checker, mailer, env.log,
	)
}

func TestGenerateXML_StoresDocument(t *testing.T) {
	env := newTestEnv()
	uc := newDocumentUC(env, nil, nil)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	data, name, err := uc.GenerateXML(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-0001.xml", name)
	assert.Contains(t, string(data), "RE-2026-0001")

	stored, err := env.invoiceRepo.GetByID(ctx, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, data, stored.XMLData)
	assert.Empty(t, stored.PDFData)
}

func TestGeneratePDF_StoresBothDocuments(t *testing.T) {
	env := newTestEnv()
	uc := newDocumentUC(env, nil, nil)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	data, name, err := uc.GeneratePDF(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-0001.pdf", name)
	assert.NotEmpty(t, data)

	stored, err := env.invoiceRepo.GetByID(ctx, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, data, stored.PDFData)
	assert.NotEmpty(t, stored.XMLData)
}

func TestGenerate_RejectsDrafts(t *testing.T) {
	env := newTestEnv()
	uc := newDocumentUC(env, nil, nil)
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	_, _, err := uc.GenerateXML(ctx, env.tenant.ID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFinalized)
	_, _, err = uc.GeneratePDF(ctx, env.tenant.ID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFinalized)
}

func TestValidate_NoCheckerConfigured(t *testing.T) {
	env := newTestEnv()
	uc := newDocumentUC(env, nil, nil)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	resp, err := uc.Validate(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, validator.OutcomeUnreachable, resp.Outcome)
	assert.True(t, resp.IsValid)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "Validierung übersprungen")
}

func TestValidate_PassesOutcomeThrough(t *testing.T) {
	env := newTestEnv()
	checker := &stubChecker{result: validator.Result{
		Outcome: validator.OutcomeInvalid,
		IsValid: false,
		Errors:  []string{"BR-DE-1: Zahlungsbedingungen fehlen"},
	}}
	uc := newDocumentUC(env, checker, nil)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	resp, err := uc.Validate(ctx, env.tenant.ID, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, validator.OutcomeInvalid, resp.Outcome)
	assert.False(t, resp.IsValid)
	assert.Equal(t, []string{"BR-DE-1: Zahlungsbedingungen fehlen"}, resp.Errors)

	// validation generated and stored the XML as a side effect
	stored, err := env.invoiceRepo.GetByID(ctx, invoiceID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.XMLData)
}

func TestSend_GeneratesDocumentAndMarksSent(t *testing.T) {
	env := newTestEnv()
	mailer := &stubMailer{}
	uc := newDocumentUC(env, nil, mailer)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	err := uc.Send(ctx, env.tenant.ID, invoiceID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, mailer.sent)

	stored, err := env.invoiceRepo.GetByID(ctx, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSent, stored.Status)
	assert.NotEmpty(t, stored.PDFData, "zugferd invoices are sent as hybrid PDF")
}

func TestSend_ExplicitRecipient(t *testing.T) {
	env := newTestEnv()
	mailer := &stubMailer{}
	uc := newDocumentUC(env, nil, mailer)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	err := uc.Send(ctx, env.tenant.ID, invoiceID, "extern@example.org")
	require.NoError(t, err)
	require.Len(t, mailer.recipients, 1)
	assert.Equal(t, "extern@example.org", mailer.recipients[0])
}

func TestSend_NoMailerConfigured(t *testing.T) {
	env := newTestEnv()
	uc := newDocumentUC(env, nil, nil)
	ctx := context.Background()
	invoiceID := finalizedInvoice(t, env)

	err := uc.Send(ctx, env.tenant.ID, invoiceID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSend_RejectsDrafts(t *testing.T) {
	env := newTestEnv()
	mailer := &stubMailer{}
	uc := newDocumentUC(env, nil, mailer)
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	err := uc.Send(ctx, env.tenant.ID, draft.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFinalized)
	assert.Zero(t, mailer.sent)
}
