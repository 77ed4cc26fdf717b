package email

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/pkg/config"
)

func TestBuildBody(t *testing.T) {
	invoice := &entity.Invoice{
		InvoiceNumber: "RE-2026-0001",
		InvoiceDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		Total:         decimal.RequireFromString("238.00"),
	}
	tenant := &entity.Tenant{
		Name:     "Muster GmbH",
		Street:   "Hauptstraße 1",
		ZipCode:  "10115",
		City:     "Berlin",
		BankName: "Commerzbank",
		IBAN:     "DE89370400440532013000",
		BIC:      "COBADEFFXXX",
	}

	body := buildBody(invoice, tenant)
	assert.Contains(t, body, "anbei erhalten Sie die Rechnung RE-2026-0001.")
	assert.Contains(t, body, "Rechnungsdatum: 01.06.2026")
	assert.Contains(t, body, "Fällig bis: 15.06.2026")
	assert.Contains(t, body, "Betrag: 238,00 €")
	assert.Contains(t, body, "IBAN: DE89370400440532013000")
	assert.Contains(t, body, "Verwendungszweck: RE-2026-0001")
	assert.Contains(t, body, "Tel: -")
	assert.Contains(t, body, "Mit freundlichen Grüßen\nMuster GmbH")
}

func TestSendInvoiceRequiresRecipient(t *testing.T) {
	s := NewSender(config.SMTPConfig{})
	err := s.SendInvoice(&entity.Invoice{Format: entity.FormatXRechnung}, &entity.Tenant{}, &entity.Customer{}, "")
	assert.Error(t, err)
}

func TestSendInvoiceRequiresDocument(t *testing.T) {
	s := NewSender(config.SMTPConfig{})
	invoice := &entity.Invoice{InvoiceNumber: "RE-1", Format: entity.FormatZUGFeRD}
	err := s.SendInvoice(invoice, &entity.Tenant{}, &entity.Customer{Email: "x@example.com"}, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no generated document")
}
