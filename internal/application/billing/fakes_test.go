package billing

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BadRix90/e-invoice-saas/internal/application/dto"
	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/repository"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/validator"
	"github.com/BadRix90/e-invoice-saas/pkg/logger"
)

// In-memory fakes mirroring the postgres repositories, including their
// nil-on-missing lookups and the write-once archival stamp.

type fakeInvoiceRepo struct {
	invoices map[string]*entity.Invoice
	items    map[string]*entity.InvoiceItem
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices: map[string]*entity.Invoice{},
		items:    map[string]*entity.InvoiceItem{},
	}
}

func (r *fakeInvoiceRepo) Create(_ context.Context, invoice *entity.Invoice) error {
	for _, existing := range r.invoices {
		if existing.TenantID == invoice.TenantID && existing.InvoiceNumber == invoice.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *invoice
	r.invoices[invoice.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) Update(_ context.Context, invoice *entity.Invoice) error {
	if _, ok := r.invoices[invoice.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *invoice
	r.invoices[invoice.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *invoice
	return &cp, nil
}

func (r *fakeInvoiceRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Invoice, error) {
	var list []*entity.Invoice
	for _, invoice := range r.invoices {
		if invoice.TenantID == tenantID {
			cp := *invoice
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].InvoiceNumber > list[j].InvoiceNumber })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *fakeInvoiceRepo) ListForExport(_ context.Context, tenantID string, from, to *time.Time) ([]*entity.Invoice, error) {
	var list []*entity.Invoice
	for _, invoice := range r.invoices {
		if invoice.TenantID != tenantID || invoice.Status == entity.StatusDraft {
			continue
		}
		if from != nil && invoice.InvoiceDate.Before(*from) {
			continue
		}
		if to != nil && invoice.InvoiceDate.After(*to) {
			continue
		}
		cp := *invoice
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].InvoiceDate.Equal(list[j].InvoiceDate) {
			return list[i].InvoiceDate.Before(list[j].InvoiceDate)
		}
		return list[i].InvoiceNumber < list[j].InvoiceNumber
	})
	return list, nil
}

func (r *fakeInvoiceRepo) CreateItem(_ context.Context, item *entity.InvoiceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) UpdateItem(_ context.Context, item *entity.InvoiceItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) DeleteItem(_ context.Context, itemID string) error {
	delete(r.items, itemID)
	return nil
}

func (r *fakeInvoiceRepo) GetItemByID(_ context.Context, itemID string) (*entity.InvoiceItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (r *fakeInvoiceRepo) GetItemsByInvoiceID(_ context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	var list []*entity.InvoiceItem
	for _, item := range r.items {
		if item.InvoiceID == invoiceID {
			cp := *item
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	return list, nil
}

func (r *fakeInvoiceRepo) UpdateDocuments(_ context.Context, invoiceID string, xmlData, pdfData []byte) error {
	invoice, ok := r.invoices[invoiceID]
	if !ok {
		return domain.ErrNotFound
	}
	if xmlData != nil {
		invoice.XMLData = xmlData
	}
	if pdfData != nil {
		invoice.PDFData = pdfData
	}
	return nil
}

func (r *fakeInvoiceRepo) StampArchived(_ context.Context, invoiceID string, archivedAt time.Time, hash string) error {
	invoice, ok := r.invoices[invoiceID]
	if !ok {
		return domain.ErrNotFound
	}
	if invoice.ArchivedAt != nil {
		return domain.ErrAlreadyArchived
	}
	at := archivedAt
	invoice.ArchivedAt = &at
	invoice.ArchiveHash = hash
	return nil
}

type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: map[string]*entity.Customer{}}
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *entity.Customer) error {
	for _, existing := range r.customers {
		if existing.TenantID == customer.TenantID && existing.CustomerNumber == customer.CustomerNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *customer
	r.customers[customer.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	customer, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *customer
	return &cp, nil
}

func (r *fakeCustomerRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Customer, error) {
	var list []*entity.Customer
	for _, customer := range r.customers {
		if customer.TenantID == tenantID {
			cp := *customer
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CustomerNumber < list[j].CustomerNumber })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *entity.Customer) error {
	if _, ok := r.customers[customer.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *customer
	r.customers[customer.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	delete(r.customers, id)
	return nil
}

type fakeTenantRepo struct {
	tenants map[string]*entity.Tenant
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: map[string]*entity.Tenant{}}
}

func (r *fakeTenantRepo) Create(_ context.Context, tenant *entity.Tenant) error {
	cp := *tenant
	r.tenants[tenant.ID] = &cp
	return nil
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *tenant
	return &cp, nil
}

func (r *fakeTenantRepo) Update(_ context.Context, tenant *entity.Tenant) error {
	if _, ok := r.tenants[tenant.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *tenant
	r.tenants[tenant.ID] = &cp
	return nil
}

type fakeArchiveRepo struct {
	records map[string]*entity.ArchiveRecord // by invoice ID
}

func newFakeArchiveRepo() *fakeArchiveRepo {
	return &fakeArchiveRepo{records: map[string]*entity.ArchiveRecord{}}
}

func (r *fakeArchiveRepo) Create(_ context.Context, record *entity.ArchiveRecord) error {
	if _, ok := r.records[record.InvoiceID]; ok {
		return domain.ErrAlreadyArchived
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	cp := *record
	r.records[record.InvoiceID] = &cp
	return nil
}

func (r *fakeArchiveRepo) GetByInvoiceID(_ context.Context, invoiceID string) (*entity.ArchiveRecord, error) {
	record, ok := r.records[invoiceID]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

// fakeTx runs the callbacks directly against the fakes, no transaction.
type fakeTx struct {
	invoiceRepo repository.InvoiceRepository
	archiveRepo repository.ArchiveRepository
}

func (t *fakeTx) RunInvoice(ctx context.Context, fn func(repository.InvoiceRepository) error) error {
	return fn(t.invoiceRepo)
}

func (t *fakeTx) RunArchive(ctx context.Context, fn func(repository.InvoiceRepository, repository.ArchiveRepository) error) error {
	return fn(t.invoiceRepo, t.archiveRepo)
}

// Document port stubs.

type stubBuilder struct{ err error }

func (b *stubBuilder) BuildInvoiceXML(invoice *entity.Invoice, _ *entity.Tenant, _ *entity.Customer, _ []*entity.InvoiceItem) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return "<rsm:CrossIndustryInvoice>" + invoice.InvoiceNumber + "</rsm:CrossIndustryInvoice>", nil
}

type stubRenderer struct{ err error }

func (r *stubRenderer) Render(*entity.Invoice, *entity.Tenant, *entity.Customer, []*entity.InvoiceItem) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.7 stub"), nil
}

type stubEmbedder struct{ err error }

func (e *stubEmbedder) Embed(pdfData, xmlData []byte) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([]byte, 0, len(pdfData)+len(xmlData))
	out = append(out, pdfData...)
	out = append(out, xmlData...)
	return out, nil
}

type stubChecker struct{ result validator.Result }

func (c *stubChecker) Validate(context.Context, []byte) validator.Result { return c.result }

type stubMailer struct {
	err        error
	sent       int
	recipients []string
}

func (m *stubMailer) SendInvoice(_ *entity.Invoice, _ *entity.Tenant, _ *entity.Customer, recipient string) error {
	if m.err != nil {
		return m.err
	}
	m.sent++
	m.recipients = append(m.recipients, recipient)
	return nil
}

// testEnv wires the fakes into a complete application layer.
type testEnv struct {
	invoiceRepo  *fakeInvoiceRepo
	customerRepo *fakeCustomerRepo
	tenantRepo   *fakeTenantRepo
	archiveRepo  *fakeArchiveRepo
	tx           *fakeTx

	tenant   *entity.Tenant
	customer *entity.Customer

	log *logger.Logger
}

func newTestEnv() *testEnv {
	env := &testEnv{
		invoiceRepo:  newFakeInvoiceRepo(),
		customerRepo: newFakeCustomerRepo(),
		tenantRepo:   newFakeTenantRepo(),
		archiveRepo:  newFakeArchiveRepo(),
		log:          logger.New(logger.Config{Env: "test", Level: "error"}),
	}
	env.tx = &fakeTx{invoiceRepo: env.invoiceRepo, archiveRepo: env.archiveRepo}

	env.tenant = &entity.Tenant{
		ID:          "tenant-1",
		Name:        "muster",
		CompanyName: "Muster GmbH",
		Street:      "Hauptstr. 1",
		ZipCode:     "10115",
		City:        "Berlin",
		Country:     "DE",
		VatID:       "DE123456789",
		Email:       "rechnung@muster.example",
		IBAN:        "DE89370400440532013000",
		BIC:         "COBADEFFXXX",
		IsActive:    true,
	}
	env.tenantRepo.tenants[env.tenant.ID] = env.tenant

	env.customer = &entity.Customer{
		ID:               "customer-1",
		TenantID:         env.tenant.ID,
		CustomerNumber:   "K-1001",
		IsBusiness:       true,
		CompanyName:      "Beispiel AG",
		Street:           "Marktplatz 5",
		ZipCode:          "80331",
		City:             "München",
		Country:          "DE",
		Email:            "buchhaltung@beispiel.example",
		VatID:            "DE987654321",
		PaymentTermsDays: 14,
	}
	env.customerRepo.customers[env.customer.ID] = env.customer

	return env
}

func (env *testEnv) invoiceUC() *InvoiceUseCase {
	return NewInvoiceUseCase(env.invoiceRepo, env.customerRepo, env.tx, env.log)
}

func (env *testEnv) itemRequest(desc, qty, price, rate string) dto.InvoiceItemRequest {
	return dto.InvoiceItemRequest{
		Description: desc,
		Quantity:    decimal.RequireFromString(qty),
		UnitPrice:   decimal.RequireFromString(price),
		VatRate:     decimal.RequireFromString(rate),
	}
}

// draftWithItem creates a draft invoice with one 100 € / 19 % line.
func (env *testEnv) draftWithItem(ctx context.Context) *dto.InvoiceResponse {
	uc := env.invoiceUC()
	draft, err := uc.Create(ctx, env.tenant.ID, "user-1", dto.CreateInvoiceRequest{
		CustomerID:    env.customer.ID,
		InvoiceNumber: "RE-2026-0001",
		InvoiceDate:   "2026-03-15",
	})
	if err != nil {
		panic(err)
	}
	draft, err = uc.AddItem(ctx, env.tenant.ID, draft.ID, env.itemRequest("Beratung", "1", "100.00", "19.00"))
	if err != nil {
		panic(err)
	}
	return draft
}
