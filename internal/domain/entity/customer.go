package entity

import (
	"strings"
	"time"
)

// Customer represents an invoice recipient of a tenant.
type Customer struct {
	ID               string
	TenantID         string
	CustomerNumber   string
	IsBusiness       bool
	CompanyName      string
	FirstName        string
	LastName         string
	Street           string
	ZipCode          string
	City             string
	Country          string // ISO 3166-1 alpha-2
	Email            string
	Phone            string
	VatID            string // USt-IdNr.
	LeitwegID        string // routing identifier for B2G invoices (XRechnung)
	PaymentTermsDays int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DisplayName returns the company name for business customers, otherwise
// "First Last".
func (c *Customer) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
