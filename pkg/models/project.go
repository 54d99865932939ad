package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Project is a CRM customer project billed through Fakturoid.
type Project struct {
	ID              int64
	ShortTitle      string
	Currency        string
	VATPayer        bool
	PercentDiscount decimal.Decimal // 0-100, zero when no discount applies
	BillingAddress  *BillingAddress
	ExternalID      int64 // Fakturoid subject id (0 if unknown)

	Email        string
	InvoiceEmail string // Preferred over Email for invoicing, optional
	Phone        string
	DefaultURL   string
}

// BillingEmail returns the address invoices should be sent to.
func (p *Project) BillingEmail() string {
	if p.InvoiceEmail != "" {
		return p.InvoiceEmail
	}
	return p.Email
}

// HasDiscount reports whether a percent discount is configured.
func (p *Project) HasDiscount() bool {
	return !p.PercentDiscount.IsZero()
}

// BillingAddress holds the invoicing identity of a project.
type BillingAddress struct {
	Company   string
	FirstName string
	LastName  string
	Street    string
	City      string
	Zip       string
	Country   string // ISO 3166-1 alpha-2
	CIN       string // Company identification number (IČO)
	TIN       string // Tax identification number (DIČ)
}

// CompanyOrFullName returns the company name, or the person's name when no company is set.
func (a *BillingAddress) CompanyOrFullName() string {
	if a == nil {
		return ""
	}
	if name := strings.TrimSpace(a.Company); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// AdminUser is the CRM administrator account attached to a project.
type AdminUser struct {
	ID        int64
	ProjectID int64
	Email     string
}
