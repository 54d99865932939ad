package fakturoid

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoiceJSON = `{
	"id": 42,
	"subject_id": 7,
	"proforma": true,
	"number": "2024-0042",
	"variable_symbol": "20240042",
	"status": "open",
	"issued_on": "2024-03-01",
	"due_on": "2024-03-15",
	"paid_at": null,
	"cancelled_at": null,
	"sent_at": "2024-03-01T10:00:00+01:00",
	"currency": "EUR",
	"total": "121.0",
	"subtotal": "100.0",
	"remaining_amount": "121.0",
	"paid_amount": "0.0",
	"exchange_rate": "25.2",
	"tags": ["Povinná"],
	"lines": [{"id": 9007199254740993, "name": "Hosting", "quantity": "1.0", "unit_price": "100.0", "vat_rate": 21}],
	"public_html_url": "https://app.fakturoid.cz/acme/p/abc/2024-0042"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:   server.URL + "/api/v2",
		Account:   "acme",
		Email:     "billing@example.com",
		APIKey:    "secret",
		UserAgent: "crmsync-test (billing@example.com)",
	})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewClient_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing account", cfg: Config{Email: "a@b.cz", APIKey: "k"}},
		{name: "missing email", cfg: Config{Account: "acme", APIKey: "k"}},
		{name: "missing api key", cfg: Config{Account: "acme", Email: "a@b.cz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			assert.ErrorIs(t, err, ErrMissingCredentials)
		})
	}
}

func TestClient_CreateInvoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/accounts/acme/invoices.json", r.URL.Path)
		assert.Equal(t, "crmsync-test (billing@example.com)", r.Header.Get("User-Agent"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "billing@example.com", user)
		assert.Equal(t, "secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["proforma"])
		assert.Equal(t, "EUR", body["currency"])

		writeJSON(w, http.StatusCreated, invoiceJSON)
	})

	inv, err := client.CreateInvoice(context.Background(), Payload{"proforma": true, "currency": "EUR"})
	require.NoError(t, err)

	assert.Equal(t, int64(42), inv.ID)
	assert.True(t, inv.Proforma)
	assert.Equal(t, "2024-0042", inv.Number)
	assert.True(t, decimal.NewFromInt(121).Equal(inv.Total))
	assert.True(t, decimal.NewFromInt(100).Equal(inv.Subtotal))
	assert.True(t, decimal.RequireFromString("25.2").Equal(inv.ExchangeRate))
	assert.Nil(t, inv.PaidAt)
	require.NotNil(t, inv.SentAt)
	assert.True(t, inv.HasTag("Povinná"))

	require.Len(t, inv.Lines, 1)
	assert.Equal(t, json.Number("9007199254740993"), inv.Lines[0]["id"])
}

func TestClient_UpdateInvoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v2/accounts/acme/invoices/42.json", r.URL.Path)
		writeJSON(w, http.StatusOK, invoiceJSON)
	})

	inv, err := client.UpdateInvoice(context.Background(), 42, Payload{"round_total": true})
	require.NoError(t, err)
	assert.Equal(t, int64(42), inv.ID)
}

func TestClient_FireInvoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/accounts/acme/invoices/42/fire.json", r.URL.Path)
		assert.Equal(t, EventCancel, r.URL.Query().Get("event"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.FireInvoice(context.Background(), 42, EventCancel))
}

func TestClient_SearchSubjects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/accounts/acme/subjects/search.json", r.URL.Path)
		assert.Equal(t, "12345678", r.URL.Query().Get("query"))
		writeJSON(w, http.StatusOK, `[{"id": 7, "name": "Acme s.r.o.", "registration_no": "12345678"}, {"id": 8}]`)
	})

	subjects, err := client.SearchSubjects(context.Background(), "12345678")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, int64(7), subjects[0].ID)
	assert.Equal(t, "Acme s.r.o.", subjects[0].Name)
}

func TestClient_CreateSubject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/accounts/acme/subjects.json", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme s.r.o.", body["name"])

		writeJSON(w, http.StatusCreated, `{"id": 99, "name": "Acme s.r.o."}`)
	})

	subject, err := client.CreateSubject(context.Background(), Payload{"name": "Acme s.r.o."})
	require.NoError(t, err)
	assert.Equal(t, int64(99), subject.ID)
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, wantErr: ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, wantErr: ErrUnprocessable},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "server error", status: http.StatusBadGateway, wantErr: ErrServer},
		{name: "other client error", status: http.StatusBadRequest, wantErr: ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, `{"errors":{"number":["is taken"]}}`)
			})

			_, err := client.GetInvoice(context.Background(), 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "GetInvoice", apiErr.Op)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Contains(t, apiErr.Body, "is taken")
		})
	}
}

func TestClient_EmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.GetInvoice(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
