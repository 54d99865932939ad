// Package invoicesync maps CRM invoices and projects onto Fakturoid resources.
//
// Outbound, it builds proforma and update payloads and resolves the Fakturoid
// subject (contact) of a project. Inbound, it copies the state of a Fakturoid
// invoice onto the local invoice.
//
// Tax rules:
//   - EUR invoices of VAT payers are reverse charged: VAT rate 0, supply code 3
//     and transferred tax liability set.
//   - Every other line carries the standard 21 % rate.
//   - EUR invoices are paid to the configured EUR bank account.
package invoicesync

import (
	"context"

	"crmsync/internal/fakturoid"
	"crmsync/internal/logger"
	"crmsync/pkg/models"
	"crmsync/pkg/services"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RequiredTag marks Fakturoid invoices that must be paid.
const RequiredTag = "Povinná"

const (
	vatRateStandard      = 21
	vatRateReverseCharge = 0

	// supplyCodeServices is the EC Sales List code for services under reverse charge.
	supplyCodeServices = 3
)

// FakturoidAPI is the part of the Fakturoid client the sync calls.
type FakturoidAPI interface {
	CreateInvoice(ctx context.Context, payload fakturoid.Payload) (*fakturoid.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, payload fakturoid.Payload) (*fakturoid.Invoice, error)
	FireInvoice(ctx context.Context, id int64, event string) error
	SearchSubjects(ctx context.Context, query string) ([]fakturoid.Subject, error)
	CreateSubject(ctx context.Context, payload fakturoid.Payload) (*fakturoid.Subject, error)
}

// Translator renders the invoice note.
type Translator interface {
	Translate(key string, args ...any) string
}

// Store provides the CRM records the sync reads and writes.
type Store interface {
	FindTariffHistoryByInvoice(ctx context.Context, invoiceID int64) ([]models.TariffHistoryItem, error)

	// FindAdminUserByProjectID returns nil without error when the project has no admin user.
	FindAdminUserByProjectID(ctx context.Context, projectID int64) (*models.AdminUser, error)

	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
}

// BankAccount is the payment bundle used for invoices in one currency.
type BankAccount struct {
	BankAccount string
	IBAN        string
	SwiftBIC    string

	// ExchangeRate is sent on updates when non-zero.
	ExchangeRate decimal.Decimal
}

var _ services.InvoiceSyncService = (*Service)(nil)

// Service implements the CRM to Fakturoid mapping.
type Service struct {
	api          FakturoidAPI
	store        Store
	translator   Translator
	bankAccounts map[string]BankAccount
	log          zerolog.Logger
}

// NewService creates a sync service. bankAccounts is keyed by currency code.
func NewService(api FakturoidAPI, store Store, translator Translator, bankAccounts map[string]BankAccount) *Service {
	accounts := make(map[string]BankAccount, len(bankAccounts))
	for code, acc := range bankAccounts {
		accounts[models.NormalizeCurrency(code)] = acc
	}

	return &Service{
		api:          api,
		store:        store,
		translator:   translator,
		bankAccounts: accounts,
		log:          logger.WithComponent("invoicesync"),
	}
}

// VATRate returns the VAT percentage of a line.
func VATRate(currency string, vatPayer bool) int {
	if vatPayer && models.IsEUR(currency) {
		return vatRateReverseCharge
	}
	return vatRateStandard
}

// Line builds a single invoice line of quantity 1.
func (s *Service) Line(title string, unitPrice decimal.Decimal, currency string, vatPayer bool) fakturoid.Line {
	return fakturoid.Line{
		"name":       title,
		"quantity":   1,
		"unit_price": unitPrice,
		"vat_rate":   VATRate(currency, vatPayer),
	}
}

// bankAccount returns the bundle for currency.
func (s *Service) bankAccount(currency string) (BankAccount, error) {
	acc, ok := s.bankAccounts[models.NormalizeCurrency(currency)]
	if !ok {
		return BankAccount{}, ErrMissingBankAccount
	}
	return acc, nil
}

// putBankAccount adds the payment fields of the EUR account.
func (s *Service) putBankAccount(p fakturoid.Payload, currency string) (BankAccount, error) {
	acc, err := s.bankAccount(currency)
	if err != nil {
		return BankAccount{}, err
	}
	p["bank_account"] = acc.BankAccount
	p["iban"] = acc.IBAN
	p["swift_bic"] = acc.SwiftBIC
	return acc, nil
}

func putString(p fakturoid.Payload, key, value string) {
	if value != "" {
		p[key] = value
	}
}

func putID(p fakturoid.Payload, key string, value int64) {
	if value != 0 {
		p[key] = value
	}
}
