package cmd

import (
	"context"
	"errors"
	"testing"

	"crmsync/internal/fakturoid"
	"crmsync/internal/invoicesync"
	"crmsync/internal/store"
	"crmsync/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := parseID("42", "project id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, arg := range []string{"", "0", "-3", "abc"} {
		_, err := parseID(arg, "project id")
		assert.Error(t, err, arg)
	}
}

func TestHandleSyncError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
		wraps    error
	}{
		{
			name:     "unauthorized",
			err:      &fakturoid.APIError{Op: "GetInvoice", StatusCode: 401, Err: fakturoid.ErrUnauthorized},
			contains: "FAKTUROID_API_KEY",
			wraps:    fakturoid.ErrUnauthorized,
		},
		{
			name:     "missing EUR account",
			err:      invoicesync.NewSyncError("ProformaHeader", invoicesync.ErrMissingBankAccount, "EUR"),
			contains: "EUR_IBAN",
			wraps:    invoicesync.ErrMissingBankAccount,
		},
		{
			name:     "unknown record",
			err:      store.ErrNotFound,
			contains: "CRM database",
			wraps:    store.ErrNotFound,
		},
		{
			name:     "timeout",
			err:      context.DeadlineExceeded,
			contains: "--timeout",
		},
		{
			name:     "other",
			err:      errors.New("boom"),
			contains: "sync failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handleSyncError(tt.err, zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			if tt.wraps != nil {
				assert.ErrorIs(t, err, tt.wraps)
			}
		})
	}
}

func TestWebURL(t *testing.T) {
	urls := fakturoid.NewURLFactory("https://app.fakturoid.cz", "acme", 89055)
	projects := map[int64]*models.Project{
		42: {ID: 42, Currency: "EUR", ExternalID: 7},
		43: {ID: 43, Currency: "CZK"},
	}
	loadProject := func(_ context.Context, id int64) (*models.Project, error) {
		if p, ok := projects[id]; ok {
			return p, nil
		}
		return nil, store.ErrNotFound
	}

	tests := []struct {
		kind    string
		id      int64
		want    string
		wantErr bool
	}{
		{kind: "proforma-new", id: 42, want: "https://app.fakturoid.cz/acme/invoices/new_from_generator?generator_id=89055&subject_id=7"},
		{kind: "proforma-new", id: 43, want: "https://app.fakturoid.cz/acme/invoices/new"},
		{kind: "proforma-new", id: 44, wantErr: true},
		{kind: "proforma", id: 900, want: "https://app.fakturoid.cz/acme/invoices/900"},
		{kind: "send", id: 900, want: "https://app.fakturoid.cz/acme/invoices/900/message/new"},
		{kind: "subject", id: 7, want: "https://app.fakturoid.cz/acme/subjects/7"},
		{kind: "receipt", id: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, err := webURL(context.Background(), urls, tt.kind, tt.id, loadProject)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
