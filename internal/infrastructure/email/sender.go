// Package email dispatches finalized invoices to customers via SMTP.
package email

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/pkg/config"
)

// Sender sends invoice mails with the generated document attached.
type Sender struct {
	cfg config.SMTPConfig
}

// NewSender builds the sender from SMTP settings.
func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

// SendInvoice mails the invoice to recipient (falling back to the customer's
// address). ZUGFeRD invoices attach the hybrid PDF, XRechnung invoices the
// XML document.
func (s *Sender) SendInvoice(invoice *entity.Invoice, tenant *entity.Tenant, customer *entity.Customer, recipient string) error {
	to := recipient
	if to == "" {
		to = customer.Email
	}
	if to == "" {
		return fmt.Errorf("email: no recipient address")
	}

	var attachmentName string
	var attachmentType string
	var attachmentData []byte
	if invoice.Format == entity.FormatZUGFeRD {
		attachmentName = invoice.InvoiceNumber + ".pdf"
		attachmentType = "application/pdf"
		attachmentData = invoice.PDFData
	} else {
		attachmentName = invoice.InvoiceNumber + ".xml"
		attachmentType = "application/xml"
		attachmentData = invoice.XMLData
	}
	if len(attachmentData) == 0 {
		return fmt.Errorf("email: invoice %s has no generated document to attach", invoice.InvoiceNumber)
	}

	m := gomail.NewMessage()
	if tenant.Email != "" {
		m.SetAddressHeader("From", tenant.Email, tenant.Name)
	} else {
		m.SetHeader("From", s.cfg.From)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Rechnung %s von %s", invoice.InvoiceNumber, tenant.Name))
	m.SetBody("text/plain", buildBody(invoice, tenant))
	m.Attach(attachmentName,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachmentData)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {attachmentType}}),
	)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("email: send invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return nil
}

// buildBody renders the German plain-text mail body with payment details.
func buildBody(invoice *entity.Invoice, tenant *entity.Tenant) string {
	dash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}

	var b bytes.Buffer
	b.WriteString("Sehr geehrte Damen und Herren,\n\n")
	fmt.Fprintf(&b, "anbei erhalten Sie die Rechnung %s.\n\n", invoice.InvoiceNumber)
	fmt.Fprintf(&b, "Rechnungsdatum: %s\n", invoice.InvoiceDate.Format("02.01.2006"))
	fmt.Fprintf(&b, "Fällig bis: %s\n", invoice.DueDate.Format("02.01.2006"))
	fmt.Fprintf(&b, "Betrag: %s €\n\n", strings.Replace(invoice.Total.StringFixed(2), ".", ",", 1))
	b.WriteString("Bitte überweisen Sie den Betrag auf folgendes Konto:\n")
	fmt.Fprintf(&b, "Bank: %s\n", dash(tenant.BankName))
	fmt.Fprintf(&b, "IBAN: %s\n", dash(tenant.IBAN))
	fmt.Fprintf(&b, "BIC: %s\n", dash(tenant.BIC))
	fmt.Fprintf(&b, "Verwendungszweck: %s\n\n", invoice.InvoiceNumber)
	b.WriteString("Bei Fragen stehen wir Ihnen gerne zur Verfügung.\n\n")
	fmt.Fprintf(&b, "Mit freundlichen Grüßen\n%s\n\n--\n", tenant.Name)
	fmt.Fprintf(&b, "%s\n%s %s\n", tenant.Street, tenant.ZipCode, tenant.City)
	fmt.Fprintf(&b, "Tel: %s\n", dash(tenant.Phone))
	fmt.Fprintf(&b, "E-Mail: %s\n", dash(tenant.Email))
	return b.String()
}
