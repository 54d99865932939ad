package invoicesync

import (
	"context"
	"testing"
	"time"

	"crmsync/internal/fakturoid"
	"crmsync/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func remoteInvoice() *fakturoid.Invoice {
	return &fakturoid.Invoice{
		ID:              900,
		Proforma:        true,
		Number:          "2024-0042",
		VariableSymbol:  "20240042",
		IssuedOn:        "2024-03-01",
		DueOn:           "2024-03-15",
		PaidAt:          strPtr("2024-03-10T08:30:00+01:00"),
		SentAt:          strPtr("2024-03-01T10:00:00+01:00"),
		Currency:        "eur",
		Total:           decimal.NewFromInt(121),
		Subtotal:        decimal.NewFromInt(100),
		RemainingAmount: decimal.NewFromInt(121),
		PaidAmount:      decimal.NewFromInt(3000),
		ExchangeRate:    decimal.RequireFromString("25.2"),
		Tags:            []string{"web", RequiredTag},
		PublicHTMLURL:   "https://app.fakturoid.cz/acme/p/abc/2024-0042",
	}
}

func TestApplyRemoteToLocal(t *testing.T) {
	svc := newTestService(nil, nil)
	invoice := &models.Invoice{ID: 10, ExternalID: 900}

	require.NoError(t, svc.ApplyRemoteToLocal(invoice, remoteInvoice()))

	cet := time.FixedZone("CET", 3600)
	assert.True(t, invoice.Proforma)
	assert.Equal(t, "2024-0042", invoice.Code)
	assert.Equal(t, "20240042", invoice.VarSymbol)
	assert.True(t, invoice.Created.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, invoice.DueDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, invoice.PaymentDate)
	assert.True(t, invoice.PaymentDate.Equal(time.Date(2024, 3, 10, 8, 30, 0, 0, cet)))
	require.NotNil(t, invoice.Sent)
	assert.True(t, invoice.Sent.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, cet)))
	assert.False(t, invoice.Cancelled)

	assert.True(t, decimal.NewFromInt(121).Equal(invoice.Price.WithTax))
	assert.True(t, decimal.NewFromInt(21).Equal(invoice.Price.Tax))
	assert.True(t, decimal.NewFromInt(100).Equal(invoice.Price.WithoutTax()))
	assert.Equal(t, "EUR", invoice.Price.Currency)

	assert.True(t, decimal.NewFromInt(121).Equal(invoice.PriceToPay))
	assert.True(t, decimal.NewFromInt(121).Equal(invoice.PaidAmount), "paid amount is clamped to price to pay")
	assert.True(t, decimal.RequireFromString("25.2").Equal(invoice.ExchangeRate))
	assert.True(t, invoice.MustPay)
	assert.Equal(t, "https://app.fakturoid.cz/acme/p/abc/2024-0042", invoice.ExternalURL)
}

func TestApplyRemoteToLocal_PaidAmountClamp(t *testing.T) {
	tests := []struct {
		name      string
		paid      string
		remaining string
		want      string
	}{
		{name: "overpayment in home currency", paid: "3000", remaining: "121", want: "121"},
		{name: "partial payment", paid: "50", remaining: "121", want: "50"},
		{name: "equal", paid: "121", remaining: "121", want: "121"},
		{name: "fully paid", paid: "121", remaining: "0", want: "0"},
		{name: "nothing paid", paid: "0", remaining: "121", want: "0"},
	}

	svc := newTestService(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := remoteInvoice()
			remote.PaidAmount = decimal.RequireFromString(tt.paid)
			remote.RemainingAmount = decimal.RequireFromString(tt.remaining)

			invoice := &models.Invoice{}
			require.NoError(t, svc.ApplyRemoteToLocal(invoice, remote))

			assert.True(t, decimal.RequireFromString(tt.want).Equal(invoice.PaidAmount), "got %s", invoice.PaidAmount)
			assert.True(t, invoice.PaidAmount.LessThanOrEqual(invoice.PriceToPay))
		})
	}
}

func TestApplyRemoteToLocal_StatusFlags(t *testing.T) {
	svc := newTestService(nil, nil)

	remote := remoteInvoice()
	remote.PaidAt = nil
	remote.SentAt = strPtr("")
	remote.CancelledAt = strPtr("2024-03-20T12:00:00+01:00")
	remote.Tags = []string{"povinná"}
	remote.Proforma = false

	invoice := &models.Invoice{MustPay: true, Proforma: true}
	require.NoError(t, svc.ApplyRemoteToLocal(invoice, remote))

	assert.Nil(t, invoice.PaymentDate)
	assert.Nil(t, invoice.Sent)
	assert.True(t, invoice.Cancelled)
	assert.False(t, invoice.MustPay, "tag match is exact")
	assert.False(t, invoice.Proforma)
}

func TestApplyRemoteToLocal_MalformedDates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakturoid.Invoice)
	}{
		{name: "empty issued_on", mutate: func(r *fakturoid.Invoice) { r.IssuedOn = "" }},
		{name: "garbage due_on", mutate: func(r *fakturoid.Invoice) { r.DueOn = "next friday" }},
		{name: "garbage paid_at", mutate: func(r *fakturoid.Invoice) { r.PaidAt = strPtr("yesterday") }},
	}

	svc := newTestService(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := remoteInvoice()
			tt.mutate(remote)

			invoice := &models.Invoice{Code: "untouched"}
			err := svc.ApplyRemoteToLocal(invoice, remote)
			assert.ErrorIs(t, err, ErrMalformedRemoteInvoice)
			assert.Equal(t, "untouched", invoice.Code)
		})
	}
}

func TestCreateLocalInvoice(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(nil, store)
	project := testProject()

	invoice, err := svc.CreateLocalInvoice(context.Background(), project, remoteInvoice())
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Same(t, invoice, store.created[0])
	assert.Equal(t, int64(1), invoice.ID)
	assert.Equal(t, project.ID, invoice.ProjectID)
	assert.Equal(t, int64(900), invoice.ExternalID)
	assert.Equal(t, "2024-0042", invoice.Code)
}

func TestCancelInvoice(t *testing.T) {
	t.Run("cancels remote then local", func(t *testing.T) {
		api := &fakeAPI{}
		svc := newTestService(api, nil)
		invoice := &models.Invoice{ID: 10, ExternalID: 900}

		require.NoError(t, svc.CancelInvoice(context.Background(), invoice))
		assert.Equal(t, []string{fakturoid.EventCancel}, api.fired)
		assert.True(t, invoice.Cancelled)
	})

	t.Run("remote failure leaves local untouched", func(t *testing.T) {
		apiErr := &fakturoid.APIError{Op: "FireInvoice", StatusCode: 422, Err: fakturoid.ErrUnprocessable}
		svc := newTestService(&fakeAPI{fireErr: apiErr}, nil)
		invoice := &models.Invoice{ID: 10, ExternalID: 900}

		err := svc.CancelInvoice(context.Background(), invoice)
		assert.ErrorIs(t, err, fakturoid.ErrUnprocessable)
		assert.False(t, invoice.Cancelled)
	})

	t.Run("invoice not in Fakturoid", func(t *testing.T) {
		api := &fakeAPI{}
		svc := newTestService(api, nil)

		err := svc.CancelInvoice(context.Background(), &models.Invoice{ID: 10})
		assert.ErrorIs(t, err, ErrMissingExternalID)
		assert.Empty(t, api.fired)
	})
}
