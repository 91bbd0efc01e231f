package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, RunMigrations(db.Writer))

	for _, table := range []string{"organizations", "api_credentials", "job_requests"} {
		n := countRows(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		assert.Equal(t, 1, n, table)
	}
}

func TestRunMigrations_DirtySchemaRejected(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Writer.Exec("UPDATE schema_migrations SET dirty = 1")
	require.NoError(t, err)

	err = RunMigrations(db.Writer)
	assert.Error(t, err)
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Ping(context.Background()))

	require.NoError(t, db.Close())
	assert.ErrorIs(t, db.Ping(context.Background()), driven.ErrStoreUnavailable)
}
