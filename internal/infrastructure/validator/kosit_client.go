// Package validator talks to a KoSIT validator instance for official
// XRechnung conformance checks.
package validator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/BadRix90/e-invoice-saas/pkg/logger"
)

// Outcome of a validation attempt. Unreachable is deliberately not a
// failure: a down validator must never block invoice issuing, the outcome
// tag keeps the skip auditable.
const (
	OutcomeValid       = "valid"
	OutcomeInvalid     = "invalid"
	OutcomeUnreachable = "unreachable"
)

// Result is the parsed validator verdict.
type Result struct {
	Outcome  string
	IsValid  bool
	Errors   []string
	Warnings []string
}

// Client posts invoice XML to the KoSIT validator HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// NewClient builds the client. timeout bounds the whole request.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Validate submits the XML document. The validator answers 200 for valid and
// 406 for processed-but-invalid documents; both carry an SVRL report body.
func (c *Client) Validate(ctx context.Context, xmlContent []byte) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(xmlContent))
	if err != nil {
		return Result{
			Outcome: OutcomeInvalid,
			Errors:  []string{fmt.Sprintf("Validierungsfehler: %v", err)},
		}
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("validator unreachable, skipping validation")
		return Result{
			Outcome:  OutcomeUnreachable,
			IsValid:  true,
			Warnings: []string{"Validator nicht erreichbar - Validierung übersprungen"},
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotAcceptable {
		return Result{
			Outcome: OutcomeInvalid,
			Errors:  []string{fmt.Sprintf("Validator-Fehler: HTTP %d", resp.StatusCode)},
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{
			Outcome: OutcomeInvalid,
			Errors:  []string{fmt.Sprintf("Validierungsfehler: %v", err)},
		}
	}
	return parseReport(body)
}

// Healthy reports whether the validator answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/server/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// parseReport extracts the verdict from the SVRL-style report: the root's
// valid attribute, failed-assert texts as errors, successful-report texts as
// warnings and standalone message elements routed by their level attribute.
func parseReport(body []byte) Result {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return Result{
			Outcome: OutcomeInvalid,
			Errors:  []string{"Validator-Antwort konnte nicht verarbeitet werden"},
		}
	}
	root := doc.Root()
	if root == nil {
		return Result{
			Outcome: OutcomeInvalid,
			Errors:  []string{"Validator-Antwort konnte nicht verarbeitet werden"},
		}
	}

	result := Result{
		IsValid: strings.EqualFold(root.SelectAttrValue("valid", ""), "true"),
	}
	collect(root, &result)

	if result.IsValid {
		result.Outcome = OutcomeValid
	} else {
		result.Outcome = OutcomeInvalid
	}
	return result
}

func collect(el *etree.Element, result *Result) {
	switch el.Tag {
	case "failed-assert":
		for _, child := range el.ChildElements() {
			if child.Tag == "text" {
				if text := strings.TrimSpace(child.Text()); text != "" {
					result.Errors = append(result.Errors, text)
				}
			}
		}
	case "successful-report":
		for _, child := range el.ChildElements() {
			if child.Tag == "text" {
				if text := strings.TrimSpace(child.Text()); text != "" {
					result.Warnings = append(result.Warnings, text)
				}
			}
		}
	case "message":
		if text := strings.TrimSpace(el.Text()); text != "" {
			switch el.SelectAttrValue("level", "error") {
			case "error", "fatal":
				result.Errors = append(result.Errors, text)
			case "warning":
				result.Warnings = append(result.Warnings, text)
			}
		}
	}
	for _, child := range el.ChildElements() {
		collect(child, result)
	}
}
