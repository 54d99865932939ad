package invoicesync

import (
	"context"

	"crmsync/internal/fakturoid"
	"crmsync/pkg/models"
)

type fakeAPI struct {
	searchResults map[string][]fakturoid.Subject
	searchErr     error
	searches      []string

	createdSubjects []fakturoid.Payload
	createSubjectID int64
	createErr       error

	createdInvoices []fakturoid.Payload
	updated         map[int64]fakturoid.Payload
	fired           []string
	fireErr         error
}

func (f *fakeAPI) CreateInvoice(_ context.Context, payload fakturoid.Payload) (*fakturoid.Invoice, error) {
	f.createdInvoices = append(f.createdInvoices, payload)
	return &fakturoid.Invoice{ID: 500, Number: "2024-0500", Proforma: true}, nil
}

func (f *fakeAPI) UpdateInvoice(_ context.Context, id int64, payload fakturoid.Payload) (*fakturoid.Invoice, error) {
	if f.updated == nil {
		f.updated = map[int64]fakturoid.Payload{}
	}
	f.updated[id] = payload
	return &fakturoid.Invoice{ID: id}, nil
}

func (f *fakeAPI) FireInvoice(_ context.Context, id int64, event string) error {
	if f.fireErr != nil {
		return f.fireErr
	}
	f.fired = append(f.fired, event)
	return nil
}

func (f *fakeAPI) SearchSubjects(_ context.Context, query string) ([]fakturoid.Subject, error) {
	f.searches = append(f.searches, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults[query], nil
}

func (f *fakeAPI) CreateSubject(_ context.Context, payload fakturoid.Payload) (*fakturoid.Subject, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdSubjects = append(f.createdSubjects, payload)
	return &fakturoid.Subject{ID: f.createSubjectID}, nil
}

type fakeStore struct {
	history    map[int64][]models.TariffHistoryItem
	adminUsers map[int64]*models.AdminUser
	created    []*models.Invoice
}

func (f *fakeStore) FindTariffHistoryByInvoice(_ context.Context, invoiceID int64) ([]models.TariffHistoryItem, error) {
	return f.history[invoiceID], nil
}

func (f *fakeStore) FindAdminUserByProjectID(_ context.Context, projectID int64) (*models.AdminUser, error) {
	return f.adminUsers[projectID], nil
}

func (f *fakeStore) CreateInvoice(_ context.Context, invoice *models.Invoice) error {
	invoice.ID = int64(len(f.created) + 1)
	f.created = append(f.created, invoice)
	return nil
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return key + ":" + args[0].(string)
}
