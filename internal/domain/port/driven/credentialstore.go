package driven

import (
	"context"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
)

// CredentialStore defines the driven port for encrypted credential persistence.
// It deals in ciphertext only; any text encoding used by the backing store is
// converted to raw bytes inside the adapter.
type CredentialStore interface {
	// GetCredential returns the ciphertext stored for (orgID, provider).
	// Returns ErrNotFound when no row exists and ErrStoreUnavailable on any
	// other store failure.
	GetCredential(ctx context.Context, orgID, provider string) ([]byte, error)

	// UpsertCredential inserts or replaces the ciphertext for (orgID, provider).
	// At most one row exists per pair; the last write wins.
	UpsertCredential(ctx context.Context, orgID, provider string, ciphertext []byte) error

	// DeleteCredential removes the credential. Returns ErrNotFound if absent.
	DeleteCredential(ctx context.Context, orgID, provider string) error
}

// OrganizationStore defines the driven port for organization records.
type OrganizationStore interface {
	// UpsertOrganization creates the organization or renames an existing one.
	// created reports whether a new row was inserted.
	UpsertOrganization(ctx context.Context, orgID, name string) (org model.Organization, created bool, err error)

	// GetOrganization returns ErrNotFound when the organization does not exist.
	GetOrganization(ctx context.Context, orgID string) (model.Organization, error)
}
