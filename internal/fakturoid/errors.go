package fakturoid

import (
	"errors"
	"fmt"
	"net/http"
)

// Common Fakturoid API errors
var (
	// ErrMissingCredentials is returned when the account slug, e-mail or API key is not configured.
	ErrMissingCredentials = errors.New("missing Fakturoid credentials")

	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("Fakturoid rejected the credentials")

	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("Fakturoid resource not found")

	// ErrUnprocessable is returned when Fakturoid rejects the payload (422).
	ErrUnprocessable = errors.New("Fakturoid rejected the payload")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("Fakturoid rate limit exceeded")

	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("Fakturoid server error")

	// ErrRequestFailed is returned for any other non-2xx response.
	ErrRequestFailed = errors.New("Fakturoid request failed")

	// ErrEmptyResponse is returned when a response body was expected but none came back.
	ErrEmptyResponse = errors.New("empty Fakturoid response")
)

// APIError wraps a failed Fakturoid call.
type APIError struct {
	// Op is the client method that failed (e.g., "CreateInvoice").
	Op string

	// StatusCode is the HTTP status, 0 for transport failures.
	StatusCode int

	// Body is the raw response body, if any.
	Body string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fakturoid: %s failed: %v", e.Op, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("fakturoid: %s failed (status %d): %v: %s", e.Op, e.StatusCode, e.Err, e.Body)
	}
	return fmt.Sprintf("fakturoid: %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *APIError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newStatusError(op string, status int, body []byte) *APIError {
	return &APIError{
		Op:         op,
		StatusCode: status,
		Body:       string(body),
		Err:        statusError(status),
	}
}

func statusError(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnprocessableEntity:
		return ErrUnprocessable
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrRequestFailed
	}
}
