package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/BadRix90/e-invoice-saas/internal/application/billing"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/archive"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/email"
	infrapdf "github.com/BadRix90/e-invoice-saas/internal/infrastructure/pdf"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/postgres"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/validator"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/xrechnung"
	"github.com/BadRix90/e-invoice-saas/internal/infrastructure/zugferd"
	httpRouter "github.com/BadRix90/e-invoice-saas/internal/interfaces/http"
	"github.com/BadRix90/e-invoice-saas/pkg/config"
	"github.com/BadRix90/e-invoice-saas/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection")
	}
	defer pool.Close()

	tenantRepo := postgres.NewTenantRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	archiveRepo := postgres.NewArchiveRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	cipher, err := archive.NewCipher(cfg.Archive.EncryptionSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("archive cipher")
	}

	// External conformance validation is optional; without a URL the
	// document use case reports every check as skipped.
	var checker billing.ConformanceValidator
	if cfg.Validator.URL != "" {
		checker = validator.NewClient(cfg.Validator.URL, cfg.Validator.Timeout, log)
	}

	// E-mail dispatch is optional too.
	var mailer billing.InvoiceMailer
	if cfg.SMTP.Host != "" {
		mailer = email.NewSender(cfg.SMTP)
	}

	customerUC := billing.NewCustomerUseCase(customerRepo)
	invoiceUC := billing.NewInvoiceUseCase(invoiceRepo, customerRepo, txRunner, log)
	documentUC := billing.NewDocumentUseCase(
		invoiceRepo, customerRepo, tenantRepo,
		xrechnung.NewBuilder(), infrapdf.NewInvoiceRenderer(), zugferd.NewEmbedder(),
		checker, mailer, log,
	)
	archiveUC := billing.NewArchiveUseCase(invoiceRepo, customerRepo, archiveRepo, txRunner, cipher, log)
	exportUC := billing.NewExportUseCase(invoiceRepo, customerRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		CustomerUC: customerUC,
		InvoiceUC:  invoiceUC,
		DocumentUC: documentUC,
		ArchiveUC:  archiveUC,
		ExportUC:   exportUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
