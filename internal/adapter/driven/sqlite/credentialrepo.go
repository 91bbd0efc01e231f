package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// It persists ciphertext only, as bytea-style hex text, and never sees a plaintext secret.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// GetCredential returns the raw ciphertext stored for the organization and provider.
func (r *CredentialRepo) GetCredential(ctx context.Context, orgID, provider string) ([]byte, error) {
	const query = `SELECT key_encrypted FROM api_credentials WHERE organization_uuid = ? AND provider = ?`

	var encoded string
	err := r.db.Reader.QueryRowContext(ctx, query, orgID, provider).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("credential %q/%q: %w", orgID, provider, driven.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %q/%q: %w: %w", orgID, provider, driven.ErrStoreUnavailable, err)
	}

	ciphertext, err := decodeBytea(encoded)
	if err != nil {
		return nil, fmt.Errorf("credential %q/%q: %w: %w", orgID, provider, driven.ErrMalformedRecord, err)
	}
	return ciphertext, nil
}

// UpsertCredential inserts or replaces the ciphertext for the organization and provider.
// The (organization_uuid, provider) unique constraint guarantees a single row per pair.
func (r *CredentialRepo) UpsertCredential(ctx context.Context, orgID, provider string, ciphertext []byte) error {
	const query = `INSERT INTO api_credentials (organization_uuid, provider, key_encrypted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (organization_uuid, provider) DO UPDATE SET
			key_encrypted = excluded.key_encrypted,
			updated_at = excluded.updated_at`

	now := formatTime(time.Now())
	_, err := r.db.Writer.ExecContext(ctx, query, orgID, provider, encodeBytea(ciphertext), now, now)
	if err != nil {
		return fmt.Errorf("upsert credential %q/%q: %w: %w", orgID, provider, driven.ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteCredential removes the credential for the organization and provider.
func (r *CredentialRepo) DeleteCredential(ctx context.Context, orgID, provider string) error {
	const query = `DELETE FROM api_credentials WHERE organization_uuid = ? AND provider = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, orgID, provider)
	if err != nil {
		return fmt.Errorf("delete credential %q/%q: %w: %w", orgID, provider, driven.ErrStoreUnavailable, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("credential %q/%q: %w", orgID, provider, driven.ErrNotFound)
	}
	return nil
}

