package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ttsvault/internal/application"
	"github.com/ericfisherdev/ttsvault/internal/crypto"
	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

func TestVault_Resolve_ReturnsOriginalPlaintext(t *testing.T) {
	f := newFixture(t)
	f.storeSecret(t, "org-1", "sk_live_123")

	got, err := f.vault.Resolve(context.Background(), "org-1", model.ProviderElevenLabs)
	require.NoError(t, err)
	assert.Equal(t, "sk_live_123", got)
}

func TestVault_Resolve_NotConfigured(t *testing.T) {
	f := newFixture(t)

	_, err := f.vault.Resolve(context.Background(), "org-2", model.ProviderElevenLabs)
	require.ErrorIs(t, err, application.ErrNotConfigured)
	assert.NotErrorIs(t, err, application.ErrCorrupted)
}

func TestVault_Resolve_CorruptedCiphertext(t *testing.T) {
	f := newFixture(t)
	f.storeSecret(t, "org-1", "sk_live_123")

	k := credKey{"org-1", model.ProviderElevenLabs}
	f.creds.records[k][len(f.creds.records[k])-1] ^= 0x01

	_, err := f.vault.Resolve(context.Background(), "org-1", model.ProviderElevenLabs)
	require.ErrorIs(t, err, application.ErrCorrupted)
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
	assert.NotErrorIs(t, err, application.ErrNotConfigured)
	assert.NotContains(t, err.Error(), "sk_live_123")
}

func TestVault_Resolve_MalformedRecordIsCorrupted(t *testing.T) {
	f := newFixture(t)
	f.creds.getErr = fmt.Errorf("decode key_encrypted: %w", driven.ErrMalformedRecord)

	_, err := f.vault.Resolve(context.Background(), "org-1", model.ProviderElevenLabs)
	assert.ErrorIs(t, err, application.ErrCorrupted)
}

func TestVault_Resolve_StoreUnavailablePassesThrough(t *testing.T) {
	f := newFixture(t)
	f.creds.getErr = fmt.Errorf("%w: %w", driven.ErrStoreUnavailable, errors.New("disk I/O error"))

	_, err := f.vault.Resolve(context.Background(), "org-1", model.ProviderElevenLabs)
	require.ErrorIs(t, err, driven.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, application.ErrNotConfigured)
	assert.NotErrorIs(t, err, application.ErrCorrupted)
}

func TestVault_Store_CreatesMissingOrganization(t *testing.T) {
	f := newFixture(t)
	f.storeSecret(t, "org-9", "secret")

	org, err := f.orgs.GetOrganization(context.Background(), "org-9")
	require.NoError(t, err)
	assert.Equal(t, "Organization org-9", org.Name)
}

func TestVault_Store_KeepsExistingOrganizationName(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.orgs.UpsertOrganization(context.Background(), "org-1", "Acme")
	require.NoError(t, err)

	f.storeSecret(t, "org-1", "secret")

	org, err := f.orgs.GetOrganization(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
}

func TestVault_Store_OnlyCiphertextIsPersisted(t *testing.T) {
	f := newFixture(t)
	f.storeSecret(t, "org-1", "sk_plain_value")

	stored := f.creds.records[credKey{"org-1", model.ProviderElevenLabs}]
	assert.NotContains(t, string(stored), "sk_plain_value")
}

func TestVault_Store_DefaultsProvider(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.vault.Store(context.Background(), "org-1", "", "secret"))

	_, ok := f.creds.records[credKey{"org-1", model.ProviderElevenLabs}]
	assert.True(t, ok)
}

func TestVault_Store_RejectsEmptyInput(t *testing.T) {
	f := newFixture(t)

	err := f.vault.Store(context.Background(), "org-1", model.ProviderElevenLabs, "  ")
	require.ErrorIs(t, err, application.ErrInvalidRequest)

	err = f.vault.Store(context.Background(), "", model.ProviderElevenLabs, "secret")
	require.ErrorIs(t, err, application.ErrInvalidRequest)
	assert.Zero(t, f.creds.upserts)
}

func TestVault_Delete(t *testing.T) {
	f := newFixture(t)
	f.storeSecret(t, "org-1", "secret")

	require.NoError(t, f.vault.Delete(context.Background(), "org-1", model.ProviderElevenLabs))

	_, err := f.vault.Resolve(context.Background(), "org-1", model.ProviderElevenLabs)
	assert.ErrorIs(t, err, application.ErrNotConfigured)

	err = f.vault.Delete(context.Background(), "org-1", model.ProviderElevenLabs)
	assert.ErrorIs(t, err, application.ErrNotConfigured)
}
