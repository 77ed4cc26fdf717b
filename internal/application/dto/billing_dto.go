package dto

import "github.com/shopspring/decimal"

// CreateCustomerRequest body for POST /api/customers.
type CreateCustomerRequest struct {
	CustomerNumber   string `json:"customer_number"`
	IsBusiness       bool   `json:"is_business"`
	CompanyName      string `json:"company_name,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Street           string `json:"street"`
	ZipCode          string `json:"zip_code"`
	City             string `json:"city"`
	Country          string `json:"country,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	VatID            string `json:"vat_id,omitempty"`
	LeitwegID        string `json:"leitweg_id,omitempty"`
	PaymentTermsDays int    `json:"payment_terms_days,omitempty"`
}

// UpdateCustomerRequest body for PUT /api/customers/:id. Same shape as
// create; the customer number stays immutable once assigned.
type UpdateCustomerRequest struct {
	IsBusiness       bool   `json:"is_business"`
	CompanyName      string `json:"company_name,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Street           string `json:"street"`
	ZipCode          string `json:"zip_code"`
	City             string `json:"city"`
	Country          string `json:"country,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	VatID            string `json:"vat_id,omitempty"`
	LeitwegID        string `json:"leitweg_id,omitempty"`
	PaymentTermsDays int    `json:"payment_terms_days,omitempty"`
}

// CustomerResponse customer in responses.
type CustomerResponse struct {
	ID               string `json:"id"`
	TenantID         string `json:"tenant_id"`
	CustomerNumber   string `json:"customer_number"`
	IsBusiness       bool   `json:"is_business"`
	DisplayName      string `json:"display_name"`
	CompanyName      string `json:"company_name,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Street           string `json:"street"`
	ZipCode          string `json:"zip_code"`
	City             string `json:"city"`
	Country          string `json:"country"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	VatID            string `json:"vat_id,omitempty"`
	LeitwegID        string `json:"leitweg_id,omitempty"`
	PaymentTermsDays int    `json:"payment_terms_days"`
}

// CreateInvoiceRequest body for POST /api/invoices. Invoices start as
// drafts; items are added through their own endpoints.
type CreateInvoiceRequest struct {
	CustomerID     string `json:"customer_id"`
	InvoiceNumber  string `json:"invoice_number"`
	InvoiceDate    string `json:"invoice_date"` // YYYY-MM-DD
	DueDate        string `json:"due_date,omitempty"`
	Format         string `json:"format,omitempty"` // xrechnung | zugferd
	LeitwegID      string `json:"leitweg_id,omitempty"`
	BuyerReference string `json:"buyer_reference,omitempty"`
	Notes          string `json:"notes,omitempty"`
	PaymentTerms   string `json:"payment_terms,omitempty"`
}

// InvoiceItemRequest body for POST/PUT on invoice items.
type InvoiceItemRequest struct {
	Position    int             `json:"position"`
	SKU         string          `json:"sku,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"` // defaults to H87 (piece)
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VatRate     decimal.Decimal `json:"vat_rate"`
}

// InvoiceResponse invoice with items for GET /api/invoices/:id.
type InvoiceResponse struct {
	ID             string                `json:"id"`
	TenantID       string                `json:"tenant_id"`
	CustomerID     string                `json:"customer_id"`
	CustomerName   string                `json:"customer_name,omitempty"`
	InvoiceNumber  string                `json:"invoice_number"`
	InvoiceDate    string                `json:"invoice_date"`
	DueDate        string                `json:"due_date"`
	Format         string                `json:"format"`
	Status         string                `json:"status"`
	LeitwegID      string                `json:"leitweg_id,omitempty"`
	BuyerReference string                `json:"buyer_reference,omitempty"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	Total          decimal.Decimal       `json:"total"`
	Notes          string                `json:"notes,omitempty"`
	PaymentTerms   string                `json:"payment_terms,omitempty"`
	ArchivedAt     string                `json:"archived_at,omitempty"`
	ArchiveHash    string                `json:"archive_hash,omitempty"`
	Items          []InvoiceItemResponse `json:"items"`
}

// InvoiceItemResponse invoice line in responses.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Position    int             `json:"position"`
	SKU         string          `json:"sku,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VatRate     decimal.Decimal `json:"vat_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// ValidationResponse validator verdict for POST /api/invoices/:id/validate.
type ValidationResponse struct {
	Outcome  string   `json:"outcome"` // valid | invalid | unreachable
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ArchiveResponse result of POST /api/invoices/:id/archive.
type ArchiveResponse struct {
	ArchiveID  string `json:"archive_id"`
	Hash       string `json:"hash"`
	ArchivedAt string `json:"archived_at"`
	FileSize   int64  `json:"file_size"`
}

// ArchiveVerifyResponse result of GET /api/invoices/:id/archive/verify.
type ArchiveVerifyResponse struct {
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
	Hash         string `json:"hash,omitempty"`
	ExpectedHash string `json:"expected_hash,omitempty"`
	ActualHash   string `json:"actual_hash,omitempty"`
	ArchivedAt   string `json:"archived_at,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
}

// SendInvoiceRequest body for POST /api/invoices/:id/send.
// Recipient overrides the customer's address when set.
type SendInvoiceRequest struct {
	Recipient string `json:"recipient,omitempty"`
}
