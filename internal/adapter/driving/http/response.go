package httphandler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeAudio writes a binary audio body with an explicit length.
func writeAudio(w http.ResponseWriter, contentType, cacheControl string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// SyncOrganizationRequest is the JSON body for the organization sync endpoint.
type SyncOrganizationRequest struct {
	OrganizationID string `json:"organization_uuid"`
	Name           string `json:"name"`
}

// OrganizationResponse is the JSON representation of an organization.
type OrganizationResponse struct {
	OrganizationID string `json:"organization_uuid"`
	Name           string `json:"name"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// SyncOrganizationResponse wraps the synced organization.
type SyncOrganizationResponse struct {
	Success      bool                 `json:"success"`
	Organization OrganizationResponse `json:"organization"`
	Created      bool                 `json:"created,omitempty"`
	Updated      bool                 `json:"updated,omitempty"`
}

// CredentialRequest is the JSON body for the credential store, decrypt and
// validate endpoints. Not every field is used by every endpoint.
type CredentialRequest struct {
	OrganizationID string `json:"organization_uuid"`
	Provider       string `json:"provider"`
	APIKey         string `json:"api_key"`
}

// StoreCredentialResponse confirms a stored credential without echoing it.
type StoreCredentialResponse struct {
	Success        bool   `json:"success"`
	OrganizationID string `json:"organization_uuid"`
	Provider       string `json:"provider"`
}

// DecryptCredentialResponse carries a resolved secret to an admin caller.
type DecryptCredentialResponse struct {
	APIKey string `json:"api_key"`
}

// ValidateCredentialResponse reports a secret the provider accepted.
type ValidateCredentialResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// GenerateRequest is the JSON body for the speech generation endpoint.
type GenerateRequest struct {
	OrganizationID string               `json:"org_uuid"`
	ProjectID      string               `json:"project_uuid"`
	VoiceID        string               `json:"voice_id"`
	Text           string               `json:"text"`
	TextFormat     string               `json:"text_format"`
	ModelID        string               `json:"model_id"`
	VoiceSettings  *model.VoiceSettings `json:"voice_settings"`
}

// UpdateJobRequest is the JSON body for the job update endpoint.
type UpdateJobRequest struct {
	Status   string            `json:"status"`
	Metadata model.JobMetadata `json:"metadata"`
}

// JobResponse is the JSON representation of a job record.
type JobResponse struct {
	ID             string            `json:"job_request_uuid"`
	OrganizationID string            `json:"organization_uuid"`
	Status         string            `json:"status"`
	Metadata       model.JobMetadata `json:"metadata"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}

// JobEnvelope wraps a job in the get and update responses.
type JobEnvelope struct {
	Success bool        `json:"success"`
	Job     JobResponse `json:"job"`
}

// toOrganizationResponse converts a domain Organization to its JSON representation.
func toOrganizationResponse(org model.Organization) OrganizationResponse {
	return OrganizationResponse{
		OrganizationID: org.ID,
		Name:           org.Name,
		CreatedAt:      org.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      org.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toJobResponse converts a domain Job to its JSON representation.
func toJobResponse(job model.Job) JobResponse {
	metadata := job.Metadata
	if metadata == nil {
		metadata = model.JobMetadata{}
	}

	return JobResponse{
		ID:             job.ID,
		OrganizationID: job.OrganizationID,
		Status:         string(job.Status),
		Metadata:       metadata,
		CreatedAt:      job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      job.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
