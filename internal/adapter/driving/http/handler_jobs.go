package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// GetJob returns a job record by id.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.ledger.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, driven.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		h.writeServiceError(w, err, "get job")
		return
	}

	writeJSON(w, http.StatusOK, JobEnvelope{Success: true, Job: toJobResponse(job)})
}

// UpdateJob applies a status change and metadata patch to a job.
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var req UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.ledger.Update(r.Context(), r.PathValue("id"), req.Status, req.Metadata)
	if errors.Is(err, driven.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		h.writeServiceError(w, err, "update job")
		return
	}

	writeJSON(w, http.StatusOK, JobEnvelope{Success: true, Job: toJobResponse(job)})
}

// JobAudio returns archived audio for a completed job.
func (h *Handler) JobAudio(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "audio archive not configured")
		return
	}

	job, err := h.ledger.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, driven.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		h.writeServiceError(w, err, "get job audio")
		return
	}

	if archived, _ := job.Metadata[model.MetaArchived].(bool); !archived {
		writeError(w, http.StatusNotFound, "audio not archived for this job")
		return
	}

	data, err := h.archive.Download(r.Context(), job.ID)
	if errors.Is(err, driven.ErrNotFound) {
		writeError(w, http.StatusNotFound, "archived audio not found")
		return
	}
	if err != nil {
		h.writeServiceError(w, err, "get job audio")
		return
	}

	writeAudio(w, "audio/mpeg", "private, max-age=3600", data)
}
