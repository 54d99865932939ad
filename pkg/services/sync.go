package services

import (
	"context"

	"crmsync/internal/fakturoid"
	"crmsync/pkg/models"
	"github.com/shopspring/decimal"
)

// InvoiceSyncService defines the interface for keeping CRM invoices and Fakturoid in step
type InvoiceSyncService interface {
	// BuildProformaPayload creates the Fakturoid payload of a one-line proforma invoice
	BuildProformaPayload(project *models.Project, lineTitle, currency string, unitPrice decimal.Decimal) (fakturoid.Payload, error)

	// CreateProformaInvoice posts a proforma payload to Fakturoid
	CreateProformaInvoice(ctx context.Context, payload fakturoid.Payload) (*fakturoid.Invoice, error)

	// BuildUpdatePayload rebuilds the lines of a remote invoice from the local tariff history
	BuildUpdatePayload(ctx context.Context, invoice *models.Invoice, remote *fakturoid.Invoice) (fakturoid.Payload, error)

	// UpdateRemoteInvoice sends the update payload of a local invoice to Fakturoid
	UpdateRemoteInvoice(ctx context.Context, invoice *models.Invoice, remote *fakturoid.Invoice) (*fakturoid.Invoice, error)

	// ApplyRemoteToLocal copies the state of a Fakturoid invoice onto the local invoice
	ApplyRemoteToLocal(invoice *models.Invoice, remote *fakturoid.Invoice) error

	// CreateLocalInvoice stores a new local invoice mirroring a Fakturoid invoice
	CreateLocalInvoice(ctx context.Context, project *models.Project, remote *fakturoid.Invoice) (*models.Invoice, error)

	// ResolveOrCreateContact returns the Fakturoid subject id of a project, creating the subject when needed
	ResolveOrCreateContact(ctx context.Context, project *models.Project) (int64, error)

	// ContactPayload builds the Fakturoid subject payload of a project
	ContactPayload(ctx context.Context, project *models.Project) (fakturoid.Payload, error)

	// CancelInvoice fires the cancel event on the remote invoice
	CancelInvoice(ctx context.Context, invoice *models.Invoice) error
}
