package model

import "time"

// Metadata keys written by the generation flow.
const (
	MetaVoiceID        = "voice_id"
	MetaText           = "text"
	MetaModelID        = "model_id"
	MetaVoiceSettings  = "voice_settings"
	MetaProjectID      = "project_uuid"
	MetaAudioGenerated = "audio_generated"
	MetaAudioSize      = "audio_size"
	MetaArchived       = "archived"
	MetaError          = "error"
)

// JobMetadata is the free-form bag attached to a job.
type JobMetadata map[string]any

// Merge returns a new bag holding m overlaid with patch. Keys in patch win;
// nested values are replaced, not merged.
func (m JobMetadata) Merge(patch JobMetadata) JobMetadata {
	out := make(JobMetadata, len(m)+len(patch))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Job records one synthesis attempt. OrganizationID is a reference only; jobs
// are not owned by organizations and survive independently.
type Job struct {
	ID             string
	OrganizationID string
	Status         JobStatus
	Metadata       JobMetadata
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
