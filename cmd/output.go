package cmd

import (
	"time"

	"crmsync/pkg/models"
	"github.com/shopspring/decimal"
)

// InvoiceOutput represents the JSON output of a local invoice
type InvoiceOutput struct {
	ID           int64           `json:"id"`
	ProjectID    int64           `json:"project_id"`
	ExternalID   int64           `json:"external_id"`
	Code         string          `json:"code"`
	VarSymbol    string          `json:"variable_symbol"`
	Created      *time.Time      `json:"created,omitempty"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	PaymentDate  *time.Time      `json:"payment_date,omitempty"`
	Sent         *time.Time      `json:"sent,omitempty"`
	Currency     string          `json:"currency"`
	PriceWithTax decimal.Decimal `json:"price_with_tax"`
	Tax          decimal.Decimal `json:"tax"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	PriceToPay   decimal.Decimal `json:"price_to_pay"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Proforma     bool            `json:"proforma"`
	Cancelled    bool            `json:"cancelled"`
	MustPay      bool            `json:"must_pay"`
	Paid         bool            `json:"paid"`
	ExternalURL  string          `json:"external_url,omitempty"`
}

func newInvoiceOutput(inv *models.Invoice) InvoiceOutput {
	out := InvoiceOutput{
		ID:           inv.ID,
		ProjectID:    inv.ProjectID,
		ExternalID:   inv.ExternalID,
		Code:         inv.Code,
		VarSymbol:    inv.VarSymbol,
		PaymentDate:  inv.PaymentDate,
		Sent:         inv.Sent,
		Currency:     inv.Price.Currency,
		PriceWithTax: inv.Price.WithTax,
		Tax:          inv.Price.Tax,
		PaidAmount:   inv.PaidAmount,
		PriceToPay:   inv.PriceToPay,
		ExchangeRate: inv.ExchangeRate,
		Proforma:     inv.Proforma,
		Cancelled:    inv.Cancelled,
		MustPay:      inv.MustPay,
		Paid:         inv.IsPaid(),
		ExternalURL:  inv.ExternalURL,
	}

	// Handle potentially zero time values
	if !inv.Created.IsZero() {
		out.Created = &inv.Created
	}
	if !inv.DueDate.IsZero() {
		out.DueDate = &inv.DueDate
	}

	return out
}
