package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BadRix90/e-invoice-saas/internal/application/billing"
)

// RouterDeps are the use cases the router wires into handlers.
type RouterDeps struct {
	CustomerUC *billing.CustomerUseCase
	InvoiceUC  *billing.InvoiceUseCase
	DocumentUC *billing.DocumentUseCase
	ArchiveUC  *billing.ArchiveUseCase
	ExportUC   *billing.ExportUseCase
	JWTSecret  string
}

// Router registers the API routes. Everything under /api requires a Bearer
// token; health stays public for probes.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)

	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/items", invoiceHandler.AddItem)
	invoices.Put("/:id/items/:itemId", invoiceHandler.UpdateItem)
	invoices.Delete("/:id/items/:itemId", invoiceHandler.DeleteItem)
	invoices.Post("/:id/finalize", invoiceHandler.Finalize)
	invoices.Post("/:id/mark-sent", invoiceHandler.MarkSent)
	invoices.Post("/:id/mark-paid", invoiceHandler.MarkPaid)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)
	invoices.Post("/:id/duplicate", invoiceHandler.Duplicate)

	documentHandler := NewDocumentHandler(deps.DocumentUC, deps.ArchiveUC)
	invoices.Get("/:id/xml", documentHandler.GenerateXML)
	invoices.Get("/:id/pdf", documentHandler.GeneratePDF)
	invoices.Post("/:id/validate", documentHandler.Validate)
	invoices.Post("/:id/send", documentHandler.Send)
	invoices.Post("/:id/archive", documentHandler.Archive)
	invoices.Get("/:id/archive/verify", documentHandler.VerifyArchive)
	invoices.Get("/:id/archive/download", documentHandler.DownloadArchive)

	exports := api.Group("/exports")
	exportHandler := NewExportHandler(deps.ExportUC)
	exports.Get("/datev", exportHandler.BookingBatch)
	exports.Get("/simple", exportHandler.Simple)
}
