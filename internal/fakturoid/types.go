package fakturoid

import (
	"github.com/shopspring/decimal"
)

// Payload is a request body keyed by Fakturoid field names.
type Payload map[string]any

// Line is an invoice line as returned by Fakturoid. It is kept as a raw
// object so that it can be sent back unchanged.
type Line map[string]any

// Invoice is the subset of the Fakturoid invoice resource the sync relies on.
type Invoice struct {
	ID              int64           `json:"id"`
	SubjectID       int64           `json:"subject_id"`
	Proforma        bool            `json:"proforma"`
	Number          string          `json:"number"`
	VariableSymbol  string          `json:"variable_symbol"`
	Status          string          `json:"status"`
	IssuedOn        string          `json:"issued_on"`
	DueOn           string          `json:"due_on"`
	PaidAt          *string         `json:"paid_at"`
	CancelledAt     *string         `json:"cancelled_at"`
	SentAt          *string         `json:"sent_at"`
	Currency        string          `json:"currency"`
	Total           decimal.Decimal `json:"total"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	Tags            []string        `json:"tags"`
	Lines           []Line          `json:"lines"`
	PublicHTMLURL   string          `json:"public_html_url"`
}

// HasTag reports whether the invoice carries the given tag.
func (i *Invoice) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Subject is a Fakturoid contact.
type Subject struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	RegistrationNo string `json:"registration_no"`
	VatNo          string `json:"vat_no"`
}

// Invoice fire events.
const (
	EventCancel   = "cancel"
	EventUndo     = "undo_cancel"
	EventMarkSent = "mark_as_sent"
	EventDeliver  = "deliver"
)
