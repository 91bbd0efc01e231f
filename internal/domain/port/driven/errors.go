// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by store and provider adapters.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates the record store could not be reached or
	// failed for a reason other than a missing row.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrMalformedRecord indicates a stored value could not be decoded into
	// its domain form (for example, invalid hex in a binary column).
	ErrMalformedRecord = errors.New("malformed stored record")

	// ErrInvalidCredential indicates the provider rejected the secret (HTTP 401).
	ErrInvalidCredential = errors.New("provider rejected credential")

	// ErrUpstreamUnreachable indicates no response was received from the provider.
	ErrUpstreamUnreachable = errors.New("provider unreachable")
)

// UpstreamError is a non-2xx provider response other than 401.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}
