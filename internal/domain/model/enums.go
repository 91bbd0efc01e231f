package model

import (
	"errors"
	"fmt"
)

// ErrInvalidStatus is returned when a job status is not one of the known values.
var ErrInvalidStatus = errors.New("invalid job status")

// JobStatus represents the lifecycle state of a generation job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobStatuses lists every valid status in lifecycle order.
var JobStatuses = []JobStatus{
	JobStatusPending,
	JobStatusProcessing,
	JobStatusCompleted,
	JobStatusFailed,
}

// Valid reports whether s is one of the enumerated statuses.
func (s JobStatus) Valid() bool {
	for _, known := range JobStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseJobStatus converts raw into a JobStatus, rejecting unknown values.
func ParseJobStatus(raw string) (JobStatus, error) {
	s := JobStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w %q: must be one of pending, processing, completed, failed", ErrInvalidStatus, raw)
	}
	return s, nil
}

// TextFormat describes how submitted text is marked up.
type TextFormat string

const (
	TextFormatPlain    TextFormat = "plain"
	TextFormatMarkdown TextFormat = "markdown"
	TextFormatHTML     TextFormat = "html"
)
