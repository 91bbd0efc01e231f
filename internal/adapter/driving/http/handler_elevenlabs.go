package httphandler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ericfisherdev/ttsvault/internal/application"
	"github.com/ericfisherdev/ttsvault/internal/domain/model"
)

// JobIDHeader names the job that recorded a generation.
const JobIDHeader = "X-Job-Request-Uuid"

// ListVoices returns the organization's voices from the provider.
func (h *Handler) ListVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.proxy.ListVoices(r.Context(), orgParam(r))
	if err != nil {
		h.writeServiceError(w, err, "list voices")
		return
	}

	if voices.Voices == nil {
		voices.Voices = []model.Voice{}
	}
	writeJSON(w, http.StatusOK, voices)
}

// ListHistory returns one page of the organization's generation history.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	pageSize := application.DefaultHistoryPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "page_size must be a positive integer")
			return
		}
		pageSize = n
	}

	history, err := h.proxy.ListHistory(r.Context(), orgParam(r), pageSize)
	if err != nil {
		h.writeServiceError(w, err, "list history")
		return
	}

	if history.History == nil {
		history.History = []model.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, history)
}

// HistoryAudio streams the audio of one history item.
func (h *Handler) HistoryAudio(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	orgID := orgParam(r)
	if id == "" || orgID == "" {
		writeError(w, http.StatusBadRequest, "history item id and org_uuid are required")
		return
	}

	audio, err := h.proxy.FetchHistoryAudio(r.Context(), orgID, id)
	if err != nil {
		h.writeServiceError(w, err, "fetch history audio")
		return
	}

	writeAudio(w, audio.ContentType, "public, max-age=3600", audio.Data)
}

// Generate synthesizes speech and returns the raw audio.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	genReq := application.GenerateRequest{
		OrganizationID: req.OrganizationID,
		ProjectID:      req.ProjectID,
		VoiceID:        req.VoiceID,
		Text:           req.Text,
		TextFormat:     model.TextFormat(req.TextFormat),
		ModelID:        req.ModelID,
	}
	if req.VoiceSettings != nil {
		genReq.Settings = *req.VoiceSettings
	}

	res, err := h.gen.Generate(r.Context(), genReq)
	if err != nil {
		h.writeServiceError(w, err, "generate speech")
		return
	}

	if res.JobID != "" {
		w.Header().Set(JobIDHeader, res.JobID)
	}
	writeAudio(w, "audio/mpeg", "no-cache", res.Audio)
}

func orgParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("org_uuid"))
}
