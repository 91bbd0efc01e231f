package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ttsvault/internal/application"
	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

func TestLedger_OpenAndComplete(t *testing.T) {
	jobs := newMockJobStore()
	ledger := application.NewJobLedger(jobs, nil, discardLogger())
	ctx := context.Background()

	job := ledger.Open(ctx, "org-1", model.JobMetadata{model.MetaVoiceID: "v1"})
	require.NotNil(t, job)
	assert.Equal(t, model.JobStatusProcessing, job.Status)

	ledger.Complete(ctx, job, model.JobMetadata{model.MetaAudioGenerated: true})

	got, err := ledger.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, "v1", got.Metadata[model.MetaVoiceID])
	assert.Equal(t, true, got.Metadata[model.MetaAudioGenerated])
}

func TestLedger_Open_StoreFailureReturnsNil(t *testing.T) {
	jobs := newMockJobStore()
	jobs.createErr = driven.ErrStoreUnavailable
	reg := prometheus.NewRegistry()
	metrics := application.NewMetrics(reg)
	ledger := application.NewJobLedger(jobs, metrics, discardLogger())

	job := ledger.Open(context.Background(), "org-1", nil)
	assert.Nil(t, job)

	count, err := testutil.GatherAndCount(reg, "ttsvault_ledger_write_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLedger_TransitionFailuresAreSwallowed(t *testing.T) {
	jobs := newMockJobStore()
	ledger := application.NewJobLedger(jobs, nil, discardLogger())
	ctx := context.Background()

	job := ledger.Open(ctx, "org-1", nil)
	require.NotNil(t, job)

	jobs.updateErr = errors.New("database is locked")
	assert.NotPanics(t, func() {
		ledger.Fail(ctx, job, model.JobMetadata{model.MetaError: "internal"})
	})
}

func TestLedger_NilJobIsNoOp(t *testing.T) {
	jobs := newMockJobStore()
	ledger := application.NewJobLedger(jobs, nil, discardLogger())

	ledger.Complete(context.Background(), nil, model.JobMetadata{"x": 1})
	ledger.Fail(context.Background(), nil, nil)
	assert.Zero(t, jobs.updateCalls)
}

func TestLedger_Update_InvalidStatusWritesNothing(t *testing.T) {
	jobs := newMockJobStore()
	ledger := application.NewJobLedger(jobs, nil, discardLogger())
	ctx := context.Background()

	job := ledger.Open(ctx, "org-1", model.JobMetadata{"a": "1"})
	require.NotNil(t, job)

	_, err := ledger.Update(ctx, job.ID, "bogus", model.JobMetadata{"a": "2"})
	require.ErrorIs(t, err, model.ErrInvalidStatus)
	assert.Zero(t, jobs.updateCalls)

	got, err := ledger.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, got.Status)
	assert.Equal(t, "1", got.Metadata["a"])
}

func TestLedger_Update_MergesPatch(t *testing.T) {
	jobs := newMockJobStore()
	ledger := application.NewJobLedger(jobs, nil, discardLogger())
	ctx := context.Background()

	job := ledger.Open(ctx, "org-1", model.JobMetadata{"a": "1", "b": "1"})
	require.NotNil(t, job)

	got, err := ledger.Update(ctx, job.ID, "failed", model.JobMetadata{"b": "2", "c": "3"})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	assert.Equal(t, model.JobMetadata{"a": "1", "b": "2", "c": "3"}, got.Metadata)
}

func TestLedger_Update_EmptyIsRead(t *testing.T) {
	jobs := newMockJobStore()
	ledger := application.NewJobLedger(jobs, nil, discardLogger())
	ctx := context.Background()

	job := ledger.Open(ctx, "org-1", nil)
	require.NotNil(t, job)

	got, err := ledger.Update(ctx, job.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Zero(t, jobs.updateCalls)
}

func TestLedger_Update_MissingJob(t *testing.T) {
	ledger := application.NewJobLedger(newMockJobStore(), nil, discardLogger())

	_, err := ledger.Update(context.Background(), "nope", "completed", nil)
	assert.ErrorIs(t, err, driven.ErrNotFound)

	_, err = ledger.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, driven.ErrNotFound)
}
