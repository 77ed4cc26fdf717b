package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/BadRix90/e-invoice-saas/internal/application/billing"
	"github.com/BadRix90/e-invoice-saas/internal/application/dto"
)

// ExportHandler serves the DATEV CSV downloads (protected).
type ExportHandler struct {
	exports *billing.ExportUseCase
}

func NewExportHandler(exports *billing.ExportUseCase) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// BookingBatch downloads the EXTF Buchungsstapel CSV.
// GET /api/exports/datev?from=2026-01-01&to=2026-03-31
func (h *ExportHandler) BookingBatch(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "dates must be YYYY-MM-DD"})
	}
	csvData, name, err := h.exports.BookingBatch(c.Context(), GetTenantID(c), from, to)
	if err != nil {
		return handleError(c, err)
	}
	return sendCSV(c, csvData, name)
}

// Simple downloads the flat per-invoice CSV.
// GET /api/exports/simple?from=2026-01-01&to=2026-03-31
func (h *ExportHandler) Simple(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "dates must be YYYY-MM-DD"})
	}
	csvData, name, err := h.exports.Simple(c.Context(), GetTenantID(c), from, to)
	if err != nil {
		return handleError(c, err)
	}
	return sendCSV(c, csvData, name)
}

func parseDateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}

func sendCSV(c *fiber.Ctx, csvData, name string) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.SendString(csvData)
}
