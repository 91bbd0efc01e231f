package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// Cipher is the symmetric engine used to seal secrets at rest.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// CredentialVault resolves stored credentials to plaintext on demand. It
// never caches or persists plaintext and never logs it.
type CredentialVault struct {
	creds  driven.CredentialStore
	orgs   driven.OrganizationStore
	cipher Cipher
	logger *slog.Logger
}

// NewCredentialVault creates a vault over the given stores and cipher.
func NewCredentialVault(creds driven.CredentialStore, orgs driven.OrganizationStore, cipher Cipher, logger *slog.Logger) *CredentialVault {
	return &CredentialVault{creds: creds, orgs: orgs, cipher: cipher, logger: logger}
}

// Resolve returns the plaintext secret for the organization and provider.
//
// A missing credential yields ErrNotConfigured. A credential that exists but
// cannot be decoded or decrypted yields ErrCorrupted. Store failures are
// returned wrapped as-is.
func (v *CredentialVault) Resolve(ctx context.Context, orgID, provider string) (string, error) {
	ciphertext, err := v.creds.GetCredential(ctx, orgID, provider)
	switch {
	case errors.Is(err, driven.ErrNotFound):
		return "", fmt.Errorf("%w for organization %q provider %q", ErrNotConfigured, orgID, provider)
	case errors.Is(err, driven.ErrMalformedRecord):
		v.logger.Error("stored credential is malformed", "org_id", orgID, "provider", provider, "error", err)
		return "", fmt.Errorf("%w: %w", ErrCorrupted, err)
	case err != nil:
		return "", fmt.Errorf("resolve credential: %w", err)
	}

	plaintext, err := v.cipher.Decrypt(ciphertext)
	if err != nil {
		v.logger.Error("credential decryption failed", "org_id", orgID, "provider", provider, "error", err)
		return "", fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	return string(plaintext), nil
}

// Store encrypts secret and upserts it for the organization and provider,
// creating the organization row first if the host never synced it.
func (v *CredentialVault) Store(ctx context.Context, orgID, provider, secret string) error {
	if strings.TrimSpace(orgID) == "" || strings.TrimSpace(secret) == "" {
		return fmt.Errorf("%w: organization_uuid and api_key are required", ErrInvalidRequest)
	}
	if provider == "" {
		provider = model.ProviderElevenLabs
	}

	if _, err := v.orgs.GetOrganization(ctx, orgID); err != nil {
		if !errors.Is(err, driven.ErrNotFound) {
			return fmt.Errorf("store credential: %w", err)
		}
		if _, _, err := v.orgs.UpsertOrganization(ctx, orgID, model.DefaultOrganizationName(orgID)); err != nil {
			return fmt.Errorf("store credential: %w", err)
		}
	}

	ciphertext, err := v.cipher.Encrypt([]byte(secret))
	if err != nil {
		return fmt.Errorf("encrypt credential: %w", err)
	}

	if err := v.creds.UpsertCredential(ctx, orgID, provider, ciphertext); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	v.logger.Info("credential stored", "org_id", orgID, "provider", provider)
	return nil
}

// Delete removes the credential. A missing credential yields ErrNotConfigured.
func (v *CredentialVault) Delete(ctx context.Context, orgID, provider string) error {
	if provider == "" {
		provider = model.ProviderElevenLabs
	}

	err := v.creds.DeleteCredential(ctx, orgID, provider)
	if errors.Is(err, driven.ErrNotFound) {
		return fmt.Errorf("%w for organization %q provider %q", ErrNotConfigured, orgID, provider)
	}
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	v.logger.Info("credential deleted", "org_id", orgID, "provider", provider)
	return nil
}
