package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BadRix90/e-invoice-saas/internal/application/billing"
	"github.com/BadRix90/e-invoice-saas/internal/application/dto"
)

// DocumentHandler serves document generation, conformance validation,
// archival and e-mail dispatch (protected).
type DocumentHandler struct {
	documents *billing.DocumentUseCase
	archives  *billing.ArchiveUseCase
}

func NewDocumentHandler(documents *billing.DocumentUseCase, archives *billing.ArchiveUseCase) *DocumentHandler {
	return &DocumentHandler{documents: documents, archives: archives}
}

// GenerateXML returns the XRechnung XML as a download.
// GET /api/invoices/:id/xml
func (h *DocumentHandler) GenerateXML(c *fiber.Ctx) error {
	data, name, err := h.documents.GenerateXML(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(data)
}

// GeneratePDF returns the hybrid ZUGFeRD PDF as a download.
// GET /api/invoices/:id/pdf
func (h *DocumentHandler) GeneratePDF(c *fiber.Ctx) error {
	data, name, err := h.documents.GeneratePDF(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(data)
}

// Validate runs the external conformance check.
// POST /api/invoices/:id/validate
func (h *DocumentHandler) Validate(c *fiber.Ctx) error {
	result, err := h.documents.Validate(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(result)
}

// Send mails the invoice document to the customer or an explicit recipient.
// POST /api/invoices/:id/send
func (h *DocumentHandler) Send(c *fiber.Ctx) error {
	var in dto.SendInvoiceRequest
	_ = c.BodyParser(&in) // body optional, defaults to the customer's e-mail
	if err := h.documents.Send(c.Context(), GetTenantID(c), c.Params("id"), in.Recipient); err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"sent": true})
}

// Archive snapshots the invoice into the GoBD archive.
// POST /api/invoices/:id/archive
func (h *DocumentHandler) Archive(c *fiber.Ctx) error {
	resp, err := h.archives.Archive(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// VerifyArchive checks the stored snapshot against its recorded hash.
// GET /api/invoices/:id/archive/verify
func (h *DocumentHandler) VerifyArchive(c *fiber.Ctx) error {
	report, err := h.archives.Verify(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(report)
}

// DownloadArchive returns the decrypted archive bundle.
// GET /api/invoices/:id/archive/download
func (h *DocumentHandler) DownloadArchive(c *fiber.Ctx) error {
	data, name, err := h.archives.Retrieve(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(data)
}
