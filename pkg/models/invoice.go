package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	// Core identifiers
	ID         int64  // Local invoice identifier
	ProjectID  int64  // Owning project
	ExternalID int64  // Fakturoid invoice id (0 if not yet created remotely)
	Code       string // Human-readable invoice number
	VarSymbol  string // Variable symbol used for bank payment matching

	Project *Project // Owning project, loaded on demand

	// Dates
	Created     time.Time  // Date invoice was issued
	DueDate     time.Time  // Payment due date
	PaymentDate *time.Time // Actual payment date (nil if unpaid)
	Sent        *time.Time // When the invoice was e-mailed to the client (nil if never)

	// Amounts
	Price        Price           // Total incl. tax with tax share and currency
	PaidAmount   decimal.Decimal // Amount already paid, never above PriceToPay
	PriceToPay   decimal.Decimal // Remaining amount
	ExchangeRate decimal.Decimal // Rate to home currency reported by Fakturoid

	// Status
	Proforma  bool // Preliminary invoice issued before the VAT invoice
	Cancelled bool // Cancelled in Fakturoid
	MustPay   bool // Payment is mandatory (tagged in Fakturoid)

	ExternalURL string // Public HTML URL of the invoice
}

// IsPaid reports whether nothing remains to be paid.
func (i *Invoice) IsPaid() bool {
	return i.PaymentDate != nil || (i.PriceToPay.IsZero() && i.PaidAmount.IsPositive())
}
