package entity

import "time"

// Tenant represents an issuing organization (the seller on every invoice).
// Bank and contact details are read-only inputs to document generation.
type Tenant struct {
	ID          string
	Name        string
	CompanyName string
	Street      string
	ZipCode     string
	City        string
	Country     string // ISO 3166-1 alpha-2; empty means "DE"
	TaxID       string // Steuernummer
	VatID       string // USt-IdNr.
	Email       string
	Phone       string
	BankName    string
	IBAN        string
	BIC         string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
