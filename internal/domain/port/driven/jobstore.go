package driven

import (
	"context"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
)

// JobStore defines the driven port for job request persistence.
type JobStore interface {
	// Create inserts a job. The adapter assigns ID and timestamps when empty.
	Create(ctx context.Context, job model.Job) (model.Job, error)

	// Get returns ErrNotFound when no job has the given ID.
	Get(ctx context.Context, id string) (model.Job, error)

	// Update sets status (when non-nil) and merges patch over the stored
	// metadata in one atomic step. Returns ErrNotFound for an unknown ID.
	Update(ctx context.Context, id string, status *model.JobStatus, patch model.JobMetadata) (model.Job, error)
}
