package driven

import (
	"context"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
)

// SpeechProvider is the upstream text-to-speech API. Every call takes the
// plaintext API key explicitly; implementations must not retain it.
//
// Non-2xx responses surface as ErrInvalidCredential (401) or *UpstreamError;
// transport failures surface as ErrUpstreamUnreachable.
type SpeechProvider interface {
	Name() string
	ValidateKey(ctx context.Context, apiKey string) error
	ListVoices(ctx context.Context, apiKey string) (model.VoiceList, error)
	ListHistory(ctx context.Context, apiKey string, pageSize int) (model.HistoryList, error)
	FetchHistoryAudio(ctx context.Context, apiKey, historyItemID string) (model.Audio, error)
	Synthesize(ctx context.Context, apiKey string, req model.SynthesisRequest) ([]byte, error)
}
