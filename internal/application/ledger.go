package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// JobLedger records generation attempts. Open, Complete and Fail are
// best-effort: store failures are logged and counted, never returned. Get
// and Update are the strict API behind the jobs endpoints.
type JobLedger struct {
	jobs    driven.JobStore
	metrics *Metrics
	logger  *slog.Logger
}

// NewJobLedger creates a ledger over the given store. metrics may be nil.
func NewJobLedger(jobs driven.JobStore, metrics *Metrics, logger *slog.Logger) *JobLedger {
	return &JobLedger{jobs: jobs, metrics: metrics, logger: logger}
}

// Open creates a job in the processing state. It returns nil when the store
// write fails; callers continue without a job reference.
func (l *JobLedger) Open(ctx context.Context, orgID string, metadata model.JobMetadata) *model.Job {
	job, err := l.jobs.Create(context.WithoutCancel(ctx), model.Job{
		OrganizationID: orgID,
		Status:         model.JobStatusProcessing,
		Metadata:       metadata,
	})
	if err != nil {
		l.metrics.ledgerFailure("create")
		l.logger.Error("failed to create job", "org_id", orgID, "error", err)
		return nil
	}
	return &job
}

// Complete marks job completed and merges patch into its metadata.
// A nil job is a no-op.
func (l *JobLedger) Complete(ctx context.Context, job *model.Job, patch model.JobMetadata) {
	l.transition(ctx, job, model.JobStatusCompleted, patch)
}

// Fail marks job failed and merges patch into its metadata.
// A nil job is a no-op.
func (l *JobLedger) Fail(ctx context.Context, job *model.Job, patch model.JobMetadata) {
	l.transition(ctx, job, model.JobStatusFailed, patch)
}

func (l *JobLedger) transition(ctx context.Context, job *model.Job, status model.JobStatus, patch model.JobMetadata) {
	if job == nil {
		return
	}
	// Bookkeeping must land even if the caller has gone away.
	if _, err := l.jobs.Update(context.WithoutCancel(ctx), job.ID, &status, patch); err != nil {
		l.metrics.ledgerFailure("update")
		l.logger.Error("failed to update job", "job_id", job.ID, "status", status, "error", err)
	}
}

// Get returns the job or an error wrapping driven.ErrNotFound.
func (l *JobLedger) Get(ctx context.Context, id string) (model.Job, error) {
	job, err := l.jobs.Get(ctx, id)
	if err != nil {
		return model.Job{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update validates rawStatus (when non-empty) before touching the store,
// then applies the status and merges patch. An unknown status returns
// model.ErrInvalidStatus and leaves the job unchanged.
func (l *JobLedger) Update(ctx context.Context, id, rawStatus string, patch model.JobMetadata) (model.Job, error) {
	var status *model.JobStatus
	if rawStatus != "" {
		s, err := model.ParseJobStatus(rawStatus)
		if err != nil {
			return model.Job{}, err
		}
		status = &s
	}

	if status == nil && len(patch) == 0 {
		return l.Get(ctx, id)
	}

	job, err := l.jobs.Update(ctx, id, status, patch)
	if err != nil {
		if !errors.Is(err, driven.ErrNotFound) {
			l.logger.Error("failed to update job", "job_id", id, "error", err)
		}
		return model.Job{}, fmt.Errorf("update job: %w", err)
	}
	return job, nil
}
