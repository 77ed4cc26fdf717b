package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/BadRix90/e-invoice-saas/internal/application/dto"
	"github.com/BadRix90/e-invoice-saas/internal/domain"
)

// handleError maps domain sentinels onto HTTP status codes. Anything
// unrecognized is a 500.
func handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNoItems):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "NO_ITEMS", Message: "invoice must have at least one line item"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "resource not found"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "access denied"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "resource already exists"})
	case errors.Is(err, domain.ErrNotDraft):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_DRAFT", Message: "invoice is no longer editable"})
	case errors.Is(err, domain.ErrNotFinalized):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_FINALIZED", Message: "finalize the invoice first"})
	case errors.Is(err, domain.ErrCancelled):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CANCELLED", Message: "invoice is already cancelled"})
	case errors.Is(err, domain.ErrDraftNotArchivable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DRAFT_NOT_ARCHIVABLE", Message: "draft invoices cannot be archived"})
	case errors.Is(err, domain.ErrAlreadyArchived):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_ARCHIVED", Message: "invoice is already archived"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "request conflicts with stored state"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
