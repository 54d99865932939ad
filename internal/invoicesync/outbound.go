package invoicesync

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"crmsync/internal/fakturoid"
	"crmsync/internal/i18n"
	"crmsync/pkg/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ProformaHeader builds the invoice-level fields of a new proforma for project.
func (s *Service) ProformaHeader(project *models.Project, currency string) (fakturoid.Payload, error) {
	const op = "ProformaHeader"

	currency = models.NormalizeCurrency(currency)
	addr := project.BillingAddress

	p := fakturoid.Payload{
		"proforma":         true,
		"partial_proforma": false,
		"variable_symbol":  strconv.FormatInt(project.ID, 10),
		"client_name":      clientName(project),
		"status":           "open",
		"payment_method":   "bank",
		"round_total":      true,
		"currency":         currency,
	}
	if addr != nil {
		putString(p, "client_street", addr.Street)
		putString(p, "client_city", addr.City)
		putString(p, "client_zip", addr.Zip)
		putString(p, "client_country", addr.Country)
		putString(p, "client_registration_no", addr.CIN)
		putString(p, "client_vat_no", taxID(addr))
	}
	putID(p, "subject_id", project.ExternalID)
	if s.translator != nil {
		putString(p, "note", s.translator.Translate(i18n.KeyInvoiceNote, project.ShortTitle))
	}

	if models.IsEUR(currency) {
		if _, err := s.putBankAccount(p, currency); err != nil {
			return nil, NewSyncError(op, err, currency)
		}
		if project.VATPayer {
			p["supply_code"] = supplyCodeServices
			p["transferred_tax_liability"] = true
		}
	}

	return p, nil
}

// BuildProformaPayload builds a complete proforma with a single line.
func (s *Service) BuildProformaPayload(project *models.Project, lineTitle, currency string, unitPrice decimal.Decimal) (fakturoid.Payload, error) {
	p, err := s.ProformaHeader(project, currency)
	if err != nil {
		return nil, err
	}
	p["lines"] = []fakturoid.Line{
		s.Line(lineTitle, unitPrice, currency, project.VATPayer),
	}
	return p, nil
}

// CreateProformaInvoice sends a proforma payload to Fakturoid.
func (s *Service) CreateProformaInvoice(ctx context.Context, payload fakturoid.Payload) (*fakturoid.Invoice, error) {
	const op = "CreateProformaInvoice"

	inv, err := s.api.CreateInvoice(ctx, payload)
	if err != nil {
		return nil, NewSyncError(op, err, "")
	}

	s.log.Info().
		Int64("external_id", inv.ID).
		Str("number", inv.Number).
		Msg("Proforma invoice created in Fakturoid")

	return inv, nil
}

// BuildUpdatePayload builds an update that replaces all lines of remote with
// one line per tariff history item of invoice.
func (s *Service) BuildUpdatePayload(ctx context.Context, invoice *models.Invoice, remote *fakturoid.Invoice) (fakturoid.Payload, error) {
	const op = "BuildUpdatePayload"

	project := invoice.Project
	if project == nil {
		return nil, NewSyncError(op, ErrMissingProject, fmt.Sprintf("invoice %d", invoice.ID))
	}
	currency := models.NormalizeCurrency(project.Currency)

	p := fakturoid.Payload{
		"currency":    currency,
		"round_total": true,
	}
	if models.IsEUR(currency) {
		acc, err := s.putBankAccount(p, currency)
		if err != nil {
			return nil, NewSyncError(op, err, currency)
		}
		if !acc.ExchangeRate.IsZero() {
			p["exchange_rate"] = acc.ExchangeRate
		}
		if project.VATPayer {
			p["transferred_tax_liability"] = true
			p["supply_code"] = supplyCodeServices
		} else {
			p["transferred_tax_liability"] = false
		}
	}

	history, err := s.store.FindTariffHistoryByInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, NewSyncError(op, err, "load tariff history")
	}

	var lines []fakturoid.Line
	for _, item := range history {
		unitPrice, err := s.tariffUnitPrice(project, currency, item)
		if err != nil {
			return nil, NewSyncError(op, err, fmt.Sprintf("tariff history item %d", item.ID))
		}
		lines = append(lines, s.Line(item.Title, unitPrice, currency, project.VATPayer))
	}

	// Fakturoid keeps lines that are not explicitly destroyed.
	if remote != nil {
		for _, old := range remote.Lines {
			lines = append(lines, destroyLine(old))
		}
	}

	if len(lines) > 0 {
		p["lines"] = lines
	}

	s.log.Debug().
		Int64("invoice_id", invoice.ID).
		Int("tariff_lines", len(history)).
		Int("destroyed_lines", len(lines)-len(history)).
		Msg("Built Fakturoid update payload")

	return p, nil
}

// UpdateRemoteInvoice replaces the Fakturoid invoice lines from local tariff history.
func (s *Service) UpdateRemoteInvoice(ctx context.Context, invoice *models.Invoice, remote *fakturoid.Invoice) (*fakturoid.Invoice, error) {
	const op = "UpdateRemoteInvoice"

	if invoice.ExternalID == 0 {
		return nil, NewSyncError(op, ErrMissingExternalID, fmt.Sprintf("invoice %d", invoice.ID))
	}

	payload, err := s.BuildUpdatePayload(ctx, invoice, remote)
	if err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateInvoice(ctx, invoice.ExternalID, payload)
	if err != nil {
		return nil, NewSyncError(op, err, fmt.Sprintf("external id %d", invoice.ExternalID))
	}

	s.log.Info().
		Int64("invoice_id", invoice.ID).
		Int64("external_id", invoice.ExternalID).
		Msg("Fakturoid invoice updated")

	return updated, nil
}

func (s *Service) tariffUnitPrice(project *models.Project, currency string, item models.TariffHistoryItem) (decimal.Decimal, error) {
	if item.Tariff == nil {
		return decimal.Zero, ErrMissingTariff
	}
	price, err := item.Tariff.PriceFor(currency)
	if err != nil {
		return decimal.Zero, err
	}

	unitPrice := price.UnitPrice(item.AccountingPeriod)
	if project.HasDiscount() {
		factor := decimal.NewFromInt(1).Sub(project.PercentDiscount.Div(hundred))
		unitPrice = unitPrice.Mul(factor).Round(0)
	}
	return unitPrice, nil
}

// destroyLine copies a remote line and marks it for deletion.
func destroyLine(line fakturoid.Line) fakturoid.Line {
	out := make(fakturoid.Line, len(line)+1)
	for k, v := range line {
		out[k] = v
	}
	out["_destroy"] = true
	return out
}

func clientName(project *models.Project) string {
	if name := project.BillingAddress.CompanyOrFullName(); name != "" {
		return name
	}
	return project.ShortTitle
}

// taxID returns the VAT id when Fakturoid can validate it (Czech and Slovak ids only).
// The stored value is sent as is.
func taxID(addr *models.BillingAddress) string {
	if !strings.HasPrefix(addr.TIN, "CZ") && !strings.HasPrefix(addr.TIN, "SK") {
		return ""
	}
	return addr.TIN
}
