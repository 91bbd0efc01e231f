package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

func TestOrgRepo_UpsertCreatesThenUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrgRepo(db)
	ctx := context.Background()

	org, created, err := repo.UpsertOrganization(ctx, "org-1", "Acme")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "org-1", org.ID)
	assert.Equal(t, "Acme", org.Name)
	assert.False(t, org.CreatedAt.IsZero())

	org2, created, err := repo.UpsertOrganization(ctx, "org-1", "Acme Corp")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Acme Corp", org2.Name)
	assert.Equal(t, org.CreatedAt, org2.CreatedAt)
	assert.False(t, org2.UpdatedAt.Before(org.UpdatedAt))

	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM organizations`))
}

func TestOrgRepo_GetOrganization(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrgRepo(db)
	ctx := context.Background()

	_, err := repo.GetOrganization(ctx, "org-1")
	require.ErrorIs(t, err, driven.ErrNotFound)

	_, _, err = repo.UpsertOrganization(ctx, "org-1", "Acme")
	require.NoError(t, err)

	org, err := repo.GetOrganization(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
}
