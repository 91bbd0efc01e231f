package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.JobStore = (*JobRepo)(nil)

// JobRepo is the SQLite implementation of the JobStore port interface.
// Metadata is stored as a JSON object in a TEXT column.
type JobRepo struct {
	db  *DB
	now func() time.Time
}

// NewJobRepo creates a new JobRepo backed by the given DB.
func NewJobRepo(db *DB) *JobRepo {
	return &JobRepo{db: db, now: time.Now}
}

// Create inserts a new job, assigning a UUID and timestamps when absent.
func (r *JobRepo) Create(ctx context.Context, job model.Job) (model.Job, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if !job.Status.Valid() {
		return model.Job{}, fmt.Errorf("create job: %w %q", model.ErrInvalidStatus, job.Status)
	}
	if job.Metadata == nil {
		job.Metadata = model.JobMetadata{}
	}
	now := r.now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	metadata, err := json.Marshal(job.Metadata)
	if err != nil {
		return model.Job{}, fmt.Errorf("marshal job metadata: %w", err)
	}

	const query = `INSERT INTO job_requests (job_request_uuid, organization_uuid, status, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.Writer.ExecContext(ctx, query,
		job.ID, job.OrganizationID, string(job.Status), string(metadata),
		formatTime(job.CreatedAt), formatTime(job.UpdatedAt),
	)
	if err != nil {
		return model.Job{}, fmt.Errorf("create job %q: %w: %w", job.ID, driven.ErrStoreUnavailable, err)
	}

	return r.Get(ctx, job.ID)
}

// Get returns the job with the given ID.
func (r *JobRepo) Get(ctx context.Context, id string) (model.Job, error) {
	job, err := scanJob(r.db.Reader.QueryRowContext(ctx, selectJob, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, fmt.Errorf("job %q: %w", id, driven.ErrNotFound)
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("get job %q: %w: %w", id, driven.ErrStoreUnavailable, err)
	}
	return job, nil
}

// Update sets the status when non-nil and merges patch over the stored
// metadata. The read and write happen in one writer transaction, so
// concurrent patches to the same job cannot drop each other's keys.
func (r *JobRepo) Update(ctx context.Context, id string, status *model.JobStatus, patch model.JobMetadata) (model.Job, error) {
	if status != nil && !status.Valid() {
		return model.Job{}, fmt.Errorf("update job %q: %w %q", id, model.ErrInvalidStatus, *status)
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.Job{}, fmt.Errorf("begin update job %q: %w: %w", id, driven.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanJob(tx.QueryRowContext(ctx, selectJob, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, fmt.Errorf("job %q: %w", id, driven.ErrNotFound)
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("read job %q: %w: %w", id, driven.ErrStoreUnavailable, err)
	}

	if status != nil {
		current.Status = *status
	}
	if len(patch) > 0 {
		current.Metadata = current.Metadata.Merge(patch)
	}
	current.UpdatedAt = r.now().UTC()

	metadata, err := json.Marshal(current.Metadata)
	if err != nil {
		return model.Job{}, fmt.Errorf("marshal job metadata: %w", err)
	}

	const query = `UPDATE job_requests SET status = ?, metadata = ?, updated_at = ? WHERE job_request_uuid = ?`
	if _, err := tx.ExecContext(ctx, query, string(current.Status), string(metadata), formatTime(current.UpdatedAt), id); err != nil {
		return model.Job{}, fmt.Errorf("update job %q: %w: %w", id, driven.ErrStoreUnavailable, err)
	}

	updated, err := scanJob(tx.QueryRowContext(ctx, selectJob, id))
	if err != nil {
		return model.Job{}, fmt.Errorf("reread job %q: %w: %w", id, driven.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Job{}, fmt.Errorf("commit job %q: %w: %w", id, driven.ErrStoreUnavailable, err)
	}
	return updated, nil
}

const selectJob = `SELECT job_request_uuid, organization_uuid, status, metadata, created_at, updated_at
	FROM job_requests WHERE job_request_uuid = ?`

func scanJob(row *sql.Row) (model.Job, error) {
	var job model.Job
	var status, metadata, createdAt, updatedAt string
	if err := row.Scan(&job.ID, &job.OrganizationID, &status, &metadata, &createdAt, &updatedAt); err != nil {
		return model.Job{}, err
	}

	job.Status = model.JobStatus(status)
	job.Metadata = model.JobMetadata{}
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &job.Metadata); err != nil {
			return model.Job{}, fmt.Errorf("unmarshal job metadata: %w", err)
		}
	}

	var err error
	if job.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Job{}, fmt.Errorf("parse created_at: %w", err)
	}
	if job.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Job{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return job, nil
}
