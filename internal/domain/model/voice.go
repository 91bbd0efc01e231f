package model

// DefaultModelID is the synthesis model used when the caller names none.
const DefaultModelID = "eleven_multilingual_v2"

// Voice-shaping defaults applied when a setting is absent from the request.
const (
	DefaultStability       = 0.85
	DefaultSimilarityBoost = 0.90
	DefaultStyle           = 0.0
	DefaultSpeakerBoost    = true
)

// VoiceSettings carries optional voice-shaping parameters as submitted.
// A nil field means "not provided".
type VoiceSettings struct {
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarity_boost,omitempty"`
	Style           *float64 `json:"style,omitempty"`
	UseSpeakerBoost *bool    `json:"use_speaker_boost,omitempty"`
}

// ResolvedVoiceSettings is VoiceSettings with every default applied.
type ResolvedVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Resolve applies defaults to every absent field.
func (s VoiceSettings) Resolve() ResolvedVoiceSettings {
	r := ResolvedVoiceSettings{
		Stability:       DefaultStability,
		SimilarityBoost: DefaultSimilarityBoost,
		Style:           DefaultStyle,
		UseSpeakerBoost: DefaultSpeakerBoost,
	}
	if s.Stability != nil {
		r.Stability = *s.Stability
	}
	if s.SimilarityBoost != nil {
		r.SimilarityBoost = *s.SimilarityBoost
	}
	if s.Style != nil {
		r.Style = *s.Style
	}
	if s.UseSpeakerBoost != nil {
		r.UseSpeakerBoost = *s.UseSpeakerBoost
	}
	return r
}

// InRange reports whether the three numeric settings lie within [0,1].
func (r ResolvedVoiceSettings) InRange() bool {
	for _, v := range []float64{r.Stability, r.SimilarityBoost, r.Style} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// SynthesisRequest is one text-to-speech call against the provider.
type SynthesisRequest struct {
	VoiceID  string
	Text     string
	ModelID  string
	Settings ResolvedVoiceSettings
}

// Audio is a whole-buffer audio payload with its media type.
type Audio struct {
	Data        []byte
	ContentType string
}

// Voice is one entry of the provider's voice catalogue.
type Voice struct {
	VoiceID     string            `json:"voice_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	PreviewURL  string            `json:"preview_url,omitempty"`
	Labels      map[string]string `json:"labels"`
}

// VoiceList is a page of voices as returned by the provider.
type VoiceList struct {
	Voices        []Voice `json:"voices"`
	HasMore       bool    `json:"has_more"`
	TotalCount    int     `json:"total_count"`
	NextPageToken *string `json:"next_page_token"`
}

// HistoryItem is one previously generated clip on the provider side.
type HistoryItem struct {
	HistoryItemID string         `json:"history_item_id"`
	RequestID     string         `json:"request_id,omitempty"`
	VoiceID       string         `json:"voice_id"`
	VoiceName     string         `json:"voice_name"`
	ModelID       string         `json:"model_id,omitempty"`
	Text          string         `json:"text"`
	DateUnix      int64          `json:"date_unix"`
	ContentType   string         `json:"content_type,omitempty"`
	State         string         `json:"state,omitempty"`
	Settings      map[string]any `json:"settings,omitempty"`
}

// HistoryList is a page of history items.
type HistoryList struct {
	History           []HistoryItem `json:"history"`
	LastHistoryItemID string        `json:"last_history_item_id,omitempty"`
	HasMore           bool          `json:"has_more"`
}
