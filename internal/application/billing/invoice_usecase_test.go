package billing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BadRix90/e-invoice-saas/internal/application/dto"
	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
)

func TestCreateInvoice_Defaults(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()

	resp, err := uc.Create(context.Background(), env.tenant.ID, "user-1", dto.CreateInvoiceRequest{
		CustomerID:    env.customer.ID,
		InvoiceNumber: "RE-2026-0042",
		InvoiceDate:   "2026-03-01",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDraft, resp.Status)
	assert.Equal(t, entity.FormatZUGFeRD, resp.Format)
	// due date defaults to invoice date + the customer's payment terms
	assert.Equal(t, "2026-03-15", resp.DueDate)
	assert.True(t, resp.Total.IsZero())
}

func TestCreateInvoice_LeitwegFallsBackToCustomer(t *testing.T) {
	env := newTestEnv()
	env.customer.LeitwegID = "991-12345-67"
	env.customerRepo.customers[env.customer.ID] = env.customer

	resp, err := env.invoiceUC().Create(context.Background(), env.tenant.ID, "user-1", dto.CreateInvoiceRequest{
		CustomerID:    env.customer.ID,
		InvoiceNumber: "RE-2026-0001",
		InvoiceDate:   "2026-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "991-12345-67", resp.LeitwegID)
}

func TestCreateInvoice_RejectsMissingFields(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()

	_, err := uc.Create(context.Background(), env.tenant.ID, "user-1", dto.CreateInvoiceRequest{
		InvoiceNumber: "RE-1", InvoiceDate: "2026-03-01",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), env.tenant.ID, "user-1", dto.CreateInvoiceRequest{
		CustomerID: env.customer.ID, InvoiceNumber: "RE-1", InvoiceDate: "01.03.2026",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), env.tenant.ID, "user-1", dto.CreateInvoiceRequest{
		CustomerID: env.customer.ID, InvoiceNumber: "RE-1", InvoiceDate: "2026-03-01", Format: "ubl",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateInvoice_ForeignCustomerIsNotFound(t *testing.T) {
	env := newTestEnv()
	env.customerRepo.customers["other"] = &entity.Customer{ID: "other", TenantID: "tenant-2", CustomerNumber: "K-9"}

	_, err := env.invoiceUC().Create(context.Background(), env.tenant.ID, "user-1", dto.CreateInvoiceRequest{
		CustomerID: "other", InvoiceNumber: "RE-1", InvoiceDate: "2026-03-01",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddItem_RecomputesTotals(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	resp, err := uc.AddItem(ctx, env.tenant.ID, draft.ID, env.itemRequest("Material", "3", "10.00", "7.00"))
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Items[1].Position)
	assert.Equal(t, "130.00", resp.Subtotal.StringFixed(2))
	assert.Equal(t, "21.10", resp.TaxAmount.StringFixed(2)) // 19.00 + 2.10
	assert.Equal(t, "151.10", resp.Total.StringFixed(2))
}

func TestAddItem_RejectsUnknownVatRate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	_, err := env.invoiceUC().AddItem(ctx, env.tenant.ID, draft.ID, env.itemRequest("Sondersatz", "1", "50.00", "16.00"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateItem_RecomputesTotals(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	resp, err := uc.UpdateItem(ctx, env.tenant.ID, draft.ID, draft.Items[0].ID, env.itemRequest("Beratung", "2", "100.00", "19.00"))
	require.NoError(t, err)
	assert.Equal(t, "238.00", resp.Total.StringFixed(2))
}

func TestDeleteItem_RecomputesTotals(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)
	draft, err := uc.AddItem(ctx, env.tenant.ID, draft.ID, env.itemRequest("Material", "1", "50.00", "19.00"))
	require.NoError(t, err)

	resp, err := uc.DeleteItem(ctx, env.tenant.ID, draft.ID, draft.Items[1].ID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "119.00", resp.Total.StringFixed(2))
}

func TestItemMutation_RejectedAfterFinalize(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	_, err := uc.Finalize(ctx, env.tenant.ID, draft.ID)
	require.NoError(t, err)

	_, err = uc.AddItem(ctx, env.tenant.ID, draft.ID, env.itemRequest("Nachtrag", "1", "10.00", "19.00"))
	assert.ErrorIs(t, err, domain.ErrNotDraft)
	_, err = uc.DeleteItem(ctx, env.tenant.ID, draft.ID, draft.Items[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotDraft)
}

func TestFinalize_RequiresItems(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()

	empty, err := uc.Create(ctx, env.tenant.ID, "user-1", dto.CreateInvoiceRequest{
		CustomerID: env.customer.ID, InvoiceNumber: "RE-LEER", InvoiceDate: "2026-03-01",
	})
	require.NoError(t, err)

	_, err = uc.Finalize(ctx, env.tenant.ID, empty.ID)
	assert.ErrorIs(t, err, domain.ErrNoItems)
}

func TestFinalize_LocksTotalsAndStatus(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	resp, err := uc.Finalize(ctx, env.tenant.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFinal, resp.Status)
	assert.Equal(t, "119.00", resp.Total.StringFixed(2))

	_, err = uc.Finalize(ctx, env.tenant.ID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotDraft)
}

func TestLifecycle_SentAndPaid(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	_, err := uc.MarkSent(ctx, env.tenant.ID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFinalized, "drafts cannot be sent")

	_, err = uc.Finalize(ctx, env.tenant.ID, draft.ID)
	require.NoError(t, err)

	resp, err := uc.MarkSent(ctx, env.tenant.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSent, resp.Status)

	resp, err = uc.MarkPaid(ctx, env.tenant.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, resp.Status)

	_, err = uc.MarkSent(ctx, env.tenant.ID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFinalized, "paid invoices cannot go back to sent")
}

func TestCancel_AnyStateOnce(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	resp, err := uc.Cancel(ctx, env.tenant.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, resp.Status)

	_, err = uc.Cancel(ctx, env.tenant.ID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrCancelled)
}

func TestDuplicate_NewDraftWithFreshDates(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)
	_, err := uc.Finalize(ctx, env.tenant.ID, draft.ID)
	require.NoError(t, err)

	copy, err := uc.Duplicate(ctx, env.tenant.ID, draft.ID, "user-2", "")
	require.NoError(t, err)

	assert.Equal(t, "RE-2026-0001-KOPIE", copy.InvoiceNumber)
	assert.Equal(t, entity.StatusDraft, copy.Status)
	assert.NotEqual(t, draft.ID, copy.ID)
	require.Len(t, copy.Items, 1)
	assert.Equal(t, "Beratung", copy.Items[0].Description)
	assert.Equal(t, "119.00", copy.Total.StringFixed(2))
	assert.NotEqual(t, draft.InvoiceDate, copy.InvoiceDate)
}

func TestDuplicate_ExplicitNumber(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	copy, err := uc.Duplicate(ctx, env.tenant.ID, draft.ID, "user-1", "RE-2026-0002")
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-0002", copy.InvoiceNumber)
}

func TestGetByID_TenantScoped(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	_, err := uc.GetByID(ctx, "tenant-2", draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resp, err := uc.GetByID(ctx, env.tenant.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beispiel AG", resp.CustomerName)
}

func TestItemQuantityAndPriceRounding(t *testing.T) {
	env := newTestEnv()
	uc := env.invoiceUC()
	ctx := context.Background()
	draft := env.draftWithItem(ctx)

	resp, err := uc.AddItem(ctx, env.tenant.ID, draft.ID, dto.InvoiceItemRequest{
		Description: "Krumme Menge",
		Quantity:    decimal.RequireFromString("1.23456"),
		UnitPrice:   decimal.RequireFromString("9.999"),
		VatRate:     decimal.RequireFromString("19"),
	})
	require.NoError(t, err)
	item := resp.Items[1]
	assert.Equal(t, "1.235", item.Quantity.StringFixed(3))
	assert.Equal(t, "10.00", item.UnitPrice.StringFixed(2))
	assert.Equal(t, "12.35", item.LineTotal.StringFixed(2))
}
