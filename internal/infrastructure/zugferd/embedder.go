// Package zugferd produces hybrid invoices: the rendered PDF page with the
// CII XML embedded as the standardized "factur-x.xml" attachment, readable by
// humans and by invoice processing software alike.
package zugferd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// AttachmentName is the file name mandated by the Factur-X/ZUGFeRD profile.
// Receiving software looks up the embedded XML under exactly this name.
const AttachmentName = "factur-x.xml"

// attachmentDesc is the description stored in the PDF embedded-file entry.
const attachmentDesc = "Factur-X/ZUGFeRD-Rechnungsdaten"

// Embedder attaches invoice XML to rendered PDFs.
type Embedder struct {
	conf *model.Configuration
}

// NewEmbedder builds the embedder with pdfcpu defaults. Validation is
// relaxed so PDFs from any writer are accepted as input.
func NewEmbedder() *Embedder {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Embedder{conf: conf}
}

// Embed attaches xmlData to pdfData as factur-x.xml and returns the combined
// document. Any failure is returned as an error: a ZUGFeRD invoice without
// its XML half is not a ZUGFeRD invoice, so there is no PDF-only fallback.
func (e *Embedder) Embed(pdfData, xmlData []byte) ([]byte, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("zugferd: empty PDF input")
	}
	if len(xmlData) == 0 {
		return nil, fmt.Errorf("zugferd: empty XML input")
	}

	ctx, err := api.ReadContext(bytes.NewReader(pdfData), e.conf)
	if err != nil {
		return nil, fmt.Errorf("zugferd: read PDF: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("zugferd: validate PDF: %w", err)
	}

	now := time.Now()
	attachment := model.Attachment{
		Reader:  bytes.NewReader(xmlData),
		ID:      AttachmentName,
		Desc:    attachmentDesc,
		ModTime: &now,
	}
	if err := ctx.AddAttachment(attachment, false); err != nil {
		return nil, fmt.Errorf("zugferd: attach %s: %w", AttachmentName, err)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("zugferd: write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractXML returns the embedded factur-x.xml from a hybrid PDF, the
// counterpart to Embed for round-trip verification.
func (e *Embedder) ExtractXML(pdfData []byte) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdfData), e.conf)
	if err != nil {
		return nil, fmt.Errorf("zugferd: read PDF: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("zugferd: validate PDF: %w", err)
	}

	attachments, err := ctx.ExtractAttachments([]string{AttachmentName})
	if err != nil {
		return nil, fmt.Errorf("zugferd: extract attachment: %w", err)
	}
	if len(attachments) == 0 {
		return nil, fmt.Errorf("zugferd: no %s attachment found", AttachmentName)
	}

	var out bytes.Buffer
	if _, err := out.ReadFrom(attachments[0].Reader); err != nil {
		return nil, fmt.Errorf("zugferd: read attachment: %w", err)
	}
	return out.Bytes(), nil
}
