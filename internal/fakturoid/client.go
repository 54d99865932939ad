// Package fakturoid is a small client for the Fakturoid v2 REST API.
//
// Only the endpoints the CRM sync needs are implemented: invoice create, get,
// update and fire (state actions), and subject search and create.
//
// Authentication is HTTP basic auth with the account e-mail and API key.
// Fakturoid rejects requests without a descriptive User-Agent header, so one
// is always sent.
package fakturoid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crmsync/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public Fakturoid API root.
const DefaultBaseURL = "https://app.fakturoid.cz/api/v2"

// Config holds the connection settings for a Fakturoid account.
type Config struct {
	// BaseURL is the API root, DefaultBaseURL when empty.
	BaseURL string

	// Account is the account slug from the Fakturoid URL.
	Account string

	// Email and APIKey authenticate the API user.
	Email  string
	APIKey string

	// UserAgent identifies the integration, e.g. "CRM sync (it@example.com)".
	UserAgent string

	// Timeout bounds every request. Default: 30 seconds.
	Timeout time.Duration
}

// Client talks to a single Fakturoid account.
type Client struct {
	rest *resty.Client
	log  zerolog.Logger
}

// NewClient creates a client for the configured account.
func NewClient(cfg Config) (*Client, error) {
	const op = "NewClient"

	if cfg.Account == "" || cfg.Email == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingCredentials)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fmt.Sprintf("crmsync (%s)", cfg.Email)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	base := strings.TrimRight(cfg.BaseURL, "/") + "/accounts/" + url.PathEscape(cfg.Account)

	rest := resty.New().
		SetBaseURL(base).
		SetBasicAuth(cfg.Email, cfg.APIKey).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	return &Client{
		rest: rest,
		log:  logger.WithComponent("fakturoid").With().Str("account", cfg.Account).Logger(),
	}, nil
}

// CreateInvoice creates an invoice (or proforma) from the payload.
func (c *Client) CreateInvoice(ctx context.Context, payload Payload) (*Invoice, error) {
	var inv Invoice
	if err := c.do(ctx, "CreateInvoice", http.MethodPost, "/invoices.json", nil, payload, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInvoice fetches a single invoice.
func (c *Client) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	var inv Invoice
	if err := c.do(ctx, "GetInvoice", http.MethodGet, invoicePath(id), nil, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateInvoice patches an invoice with the payload and returns the updated resource.
func (c *Client) UpdateInvoice(ctx context.Context, id int64, payload Payload) (*Invoice, error) {
	var inv Invoice
	if err := c.do(ctx, "UpdateInvoice", http.MethodPatch, invoicePath(id), nil, payload, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// FireInvoice triggers a state action such as EventCancel on an invoice.
func (c *Client) FireInvoice(ctx context.Context, id int64, event string) error {
	path := fmt.Sprintf("/invoices/%d/fire.json", id)
	return c.do(ctx, "FireInvoice", http.MethodPost, path, map[string]string{"event": event}, nil, nil)
}

// SearchSubjects runs a full-text subject search (name, e-mail, registration no., ...).
func (c *Client) SearchSubjects(ctx context.Context, query string) ([]Subject, error) {
	var subjects []Subject
	err := c.do(ctx, "SearchSubjects", http.MethodGet, "/subjects/search.json", map[string]string{"query": query}, nil, &subjects)
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

// CreateSubject creates a contact and returns it.
func (c *Client) CreateSubject(ctx context.Context, payload Payload) (*Subject, error) {
	var subject Subject
	if err := c.do(ctx, "CreateSubject", http.MethodPost, "/subjects.json", nil, payload, &subject); err != nil {
		return nil, err
	}
	return &subject, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query map[string]string, body any, result any) error {
	req := c.rest.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	c.log.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Msg("Calling Fakturoid API")

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.Error().Err(err).Str("op", op).Msg("Fakturoid request failed")
		return &APIError{Op: op, Err: err}
	}

	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Fakturoid API responded")

	if resp.IsError() {
		apiErr := newStatusError(op, resp.StatusCode(), resp.Body())
		c.log.Warn().
			Str("op", op).
			Int("status", apiErr.StatusCode).
			Str("body", apiErr.Body).
			Msg("Fakturoid returned an error response")
		return apiErr
	}

	if result == nil {
		return nil
	}
	if len(bytes.TrimSpace(resp.Body())) == 0 {
		return &APIError{Op: op, StatusCode: resp.StatusCode(), Err: ErrEmptyResponse}
	}
	if err := decodeJSON(resp.Body(), result); err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode(), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// decodeJSON keeps numbers as json.Number so raw lines round-trip exactly.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func invoicePath(id int64) string {
	return fmt.Sprintf("/invoices/%d.json", id)
}
