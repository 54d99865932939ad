package invoicesync

import (
	"errors"
	"fmt"
)

// Common sync errors
var (
	// ErrMissingBankAccount is returned when an EUR payload is built without an EUR bank account configured.
	ErrMissingBankAccount = errors.New("no bank account configured for currency")

	// ErrMissingExternalID is returned when a remote operation targets an invoice
	// that has never been created in Fakturoid.
	ErrMissingExternalID = errors.New("invoice is not linked to a Fakturoid invoice")

	// ErrMissingProject is returned when an invoice is passed without its project loaded.
	ErrMissingProject = errors.New("invoice has no project loaded")

	// ErrMissingTariff is returned when a tariff history item references no tariff.
	ErrMissingTariff = errors.New("tariff history item has no tariff")

	// ErrMalformedRemoteInvoice is returned when a Fakturoid invoice carries values
	// that cannot be mapped onto the local invoice (e.g., unparsable dates).
	ErrMalformedRemoteInvoice = errors.New("malformed Fakturoid invoice")
)

// SyncError wraps errors with the sync operation that produced them.
type SyncError struct {
	// Op is the operation that failed (e.g., "ResolveOrCreateContact").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("invoicesync: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("invoicesync: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *SyncError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *SyncError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSyncError creates a new SyncError.
func NewSyncError(op string, err error, details string) *SyncError {
	return &SyncError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}
