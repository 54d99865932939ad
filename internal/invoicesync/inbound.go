package invoicesync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crmsync/internal/fakturoid"
	"crmsync/pkg/models"
)

var remoteTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ApplyRemoteToLocal copies the state of a Fakturoid invoice onto invoice.
// The invoice is left untouched when remote cannot be mapped.
func (s *Service) ApplyRemoteToLocal(invoice *models.Invoice, remote *fakturoid.Invoice) error {
	const op = "ApplyRemoteToLocal"

	created, err := parseRemoteTime("issued_on", remote.IssuedOn)
	if err != nil {
		return NewSyncError(op, err, fmt.Sprintf("external id %d", remote.ID))
	}
	dueDate, err := parseRemoteTime("due_on", remote.DueOn)
	if err != nil {
		return NewSyncError(op, err, fmt.Sprintf("external id %d", remote.ID))
	}
	paid, err := parseOptionalRemoteTime("paid_at", remote.PaidAt)
	if err != nil {
		return NewSyncError(op, err, fmt.Sprintf("external id %d", remote.ID))
	}
	sent, err := parseOptionalRemoteTime("sent_at", remote.SentAt)
	if err != nil {
		return NewSyncError(op, err, fmt.Sprintf("external id %d", remote.ID))
	}

	invoice.Proforma = remote.Proforma
	invoice.Code = remote.Number
	invoice.VarSymbol = remote.VariableSymbol
	invoice.Created = created
	invoice.DueDate = dueDate
	invoice.PaymentDate = paid
	invoice.Cancelled = remote.CancelledAt != nil && *remote.CancelledAt != ""
	invoice.Price = models.SumPrice(remote.Total, remote.Total.Sub(remote.Subtotal), remote.Currency)
	invoice.ExternalURL = remote.PublicHTMLURL
	invoice.PriceToPay = remote.RemainingAmount
	// Fakturoid reports paid amounts of foreign currency invoices in the home currency.
	if remote.PaidAmount.GreaterThan(invoice.PriceToPay) {
		invoice.PaidAmount = invoice.PriceToPay
	} else {
		invoice.PaidAmount = remote.PaidAmount
	}
	invoice.ExchangeRate = remote.ExchangeRate
	invoice.Sent = sent
	invoice.MustPay = remote.HasTag(RequiredTag)

	return nil
}

// CreateLocalInvoice stores a local copy of a Fakturoid invoice for project.
func (s *Service) CreateLocalInvoice(ctx context.Context, project *models.Project, remote *fakturoid.Invoice) (*models.Invoice, error) {
	const op = "CreateLocalInvoice"

	invoice := &models.Invoice{
		ProjectID:  project.ID,
		Project:    project,
		ExternalID: remote.ID,
	}
	if err := s.ApplyRemoteToLocal(invoice, remote); err != nil {
		return nil, err
	}
	if err := s.store.CreateInvoice(ctx, invoice); err != nil {
		return nil, NewSyncError(op, err, fmt.Sprintf("external id %d", remote.ID))
	}

	s.log.Info().
		Int64("invoice_id", invoice.ID).
		Int64("external_id", remote.ID).
		Int64("project_id", project.ID).
		Str("code", invoice.Code).
		Msg("Local invoice created from Fakturoid")

	return invoice, nil
}

// CancelInvoice cancels the invoice in Fakturoid and then marks it cancelled
// locally. The local invoice is not persisted here.
func (s *Service) CancelInvoice(ctx context.Context, invoice *models.Invoice) error {
	const op = "CancelInvoice"

	if invoice.ExternalID == 0 {
		return NewSyncError(op, ErrMissingExternalID, fmt.Sprintf("invoice %d", invoice.ID))
	}
	if err := s.api.FireInvoice(ctx, invoice.ExternalID, fakturoid.EventCancel); err != nil {
		return NewSyncError(op, err, fmt.Sprintf("external id %d", invoice.ExternalID))
	}
	invoice.Cancelled = true

	s.log.Info().
		Int64("invoice_id", invoice.ID).
		Int64("external_id", invoice.ExternalID).
		Msg("Invoice cancelled")

	return nil
}

func parseRemoteTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s is empty", ErrMalformedRemoteInvoice, field)
	}
	for _, layout := range remoteTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s %q is not a date", ErrMalformedRemoteInvoice, field, value)
}

func parseOptionalRemoteTime(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseRemoteTime(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
