package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BadRix90/e-invoice-saas/internal/application/billing"
	"github.com/BadRix90/e-invoice-saas/internal/application/dto"
)

// InvoiceHandler serves the invoice lifecycle endpoints (protected).
type InvoiceHandler struct {
	invoices *billing.InvoiceUseCase
}

func NewInvoiceHandler(invoices *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Create creates a draft invoice.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	invoice, err := h.invoices.Create(c.Context(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List lists the tenant's invoices, newest first.
// GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid pagination"})
	}
	invoices, err := h.invoices.List(c.Context(), GetTenantID(c), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(invoices)
}

// GetByID returns one invoice with its items.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice, err := h.invoices.GetByID(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(invoice)
}

// AddItem appends a line item to a draft.
// POST /api/invoices/:id/items
func (h *InvoiceHandler) AddItem(c *fiber.Ctx) error {
	var in dto.InvoiceItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	invoice, err := h.invoices.AddItem(c.Context(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// UpdateItem replaces a line item of a draft.
// PUT /api/invoices/:id/items/:itemId
func (h *InvoiceHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.InvoiceItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	invoice, err := h.invoices.UpdateItem(c.Context(), GetTenantID(c), c.Params("id"), c.Params("itemId"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(invoice)
}

// DeleteItem removes a line item from a draft.
// DELETE /api/invoices/:id/items/:itemId
func (h *InvoiceHandler) DeleteItem(c *fiber.Ctx) error {
	invoice, err := h.invoices.DeleteItem(c.Context(), GetTenantID(c), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(invoice)
}

// Finalize locks a draft.
// POST /api/invoices/:id/finalize
func (h *InvoiceHandler) Finalize(c *fiber.Ctx) error {
	invoice, err := h.invoices.Finalize(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(invoice)
}

// MarkSent marks a finalized invoice as sent.
// POST /api/invoices/:id/mark-sent
func (h *InvoiceHandler) MarkSent(c *fiber.Ctx) error {
	invoice, err := h.invoices.MarkSent(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(invoice)
}

// MarkPaid marks a finalized or sent invoice as paid.
// POST /api/invoices/:id/mark-paid
func (h *InvoiceHandler) MarkPaid(c *fiber.Ctx) error {
	invoice, err := h.invoices.MarkPaid(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(invoice)
}

// Cancel voids an invoice.
// POST /api/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	invoice, err := h.invoices.Cancel(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(invoice)
}

// Duplicate creates a fresh draft from an existing invoice.
// POST /api/invoices/:id/duplicate
func (h *InvoiceHandler) Duplicate(c *fiber.Ctx) error {
	var in struct {
		InvoiceNumber string `json:"invoice_number"`
	}
	// body is optional; without one the number is derived
	_ = c.BodyParser(&in)
	invoice, err := h.invoices.Duplicate(c.Context(), GetTenantID(c), c.Params("id"), GetUserID(c), in.InvoiceNumber)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}
