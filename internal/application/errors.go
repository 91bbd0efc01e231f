// Package application contains use-case orchestration services.
package application

import "errors"

// Sentinel errors returned by application services. Adapter-level errors
// (driven.ErrInvalidCredential, *driven.UpstreamError, ...) pass through
// unchanged so the HTTP layer can map them.
var (
	// ErrInvalidRequest indicates missing or malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotConfigured indicates no credential exists for the organization and provider.
	ErrNotConfigured = errors.New("credentials not configured")

	// ErrCorrupted indicates a stored credential exists but cannot be decrypted.
	ErrCorrupted = errors.New("stored credential is corrupted")
)
