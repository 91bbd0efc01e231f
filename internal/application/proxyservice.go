package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// DefaultHistoryPageSize is used when the caller passes no page size.
const DefaultHistoryPageSize = 25

// ProxyService forwards organization-scoped requests to the speech provider
// using the organization's stored secret. Every call resolves the secret
// afresh and issues exactly one upstream request.
type ProxyService struct {
	vault    *CredentialVault
	provider driven.SpeechProvider
	metrics  *Metrics
	logger   *slog.Logger
}

// NewProxyService creates a proxy over the vault and provider. metrics may be nil.
func NewProxyService(vault *CredentialVault, provider driven.SpeechProvider, metrics *Metrics, logger *slog.Logger) *ProxyService {
	return &ProxyService{vault: vault, provider: provider, metrics: metrics, logger: logger}
}

// ListVoices returns the organization's voice catalogue.
func (s *ProxyService) ListVoices(ctx context.Context, orgID string) (model.VoiceList, error) {
	key, err := s.secret(ctx, orgID)
	if err != nil {
		return model.VoiceList{}, err
	}

	start := time.Now()
	voices, err := s.provider.ListVoices(ctx, key)
	s.metrics.observeUpstream("list_voices", start, err)
	if err != nil {
		return model.VoiceList{}, fmt.Errorf("list voices for organization %q: %w", orgID, err)
	}
	return voices, nil
}

// ListHistory returns one page of the organization's generation history.
// A non-positive pageSize uses DefaultHistoryPageSize.
func (s *ProxyService) ListHistory(ctx context.Context, orgID string, pageSize int) (model.HistoryList, error) {
	if pageSize <= 0 {
		pageSize = DefaultHistoryPageSize
	}

	key, err := s.secret(ctx, orgID)
	if err != nil {
		return model.HistoryList{}, err
	}

	start := time.Now()
	history, err := s.provider.ListHistory(ctx, key, pageSize)
	s.metrics.observeUpstream("list_history", start, err)
	if err != nil {
		return model.HistoryList{}, fmt.Errorf("list history for organization %q: %w", orgID, err)
	}
	return history, nil
}

// FetchHistoryAudio downloads the audio of one history item.
func (s *ProxyService) FetchHistoryAudio(ctx context.Context, orgID, historyItemID string) (model.Audio, error) {
	if strings.TrimSpace(historyItemID) == "" {
		return model.Audio{}, fmt.Errorf("%w: history item id is required", ErrInvalidRequest)
	}

	key, err := s.secret(ctx, orgID)
	if err != nil {
		return model.Audio{}, err
	}

	start := time.Now()
	audio, err := s.provider.FetchHistoryAudio(ctx, key, historyItemID)
	s.metrics.observeUpstream("history_audio", start, err)
	if err != nil {
		return model.Audio{}, fmt.Errorf("fetch history audio %q: %w", historyItemID, err)
	}
	return audio, nil
}

// ValidateSecret checks a caller-supplied secret against the provider
// without storing it. A rejected secret returns driven.ErrInvalidCredential.
func (s *ProxyService) ValidateSecret(ctx context.Context, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("%w: api_key is required", ErrInvalidRequest)
	}

	start := time.Now()
	err := s.provider.ValidateKey(ctx, apiKey)
	s.metrics.observeUpstream("validate_key", start, err)
	if err != nil {
		return fmt.Errorf("validate key: %w", err)
	}
	return nil
}

func (s *ProxyService) synthesize(ctx context.Context, key string, req model.SynthesisRequest) ([]byte, error) {
	start := time.Now()
	audio, err := s.provider.Synthesize(ctx, key, req)
	s.metrics.observeUpstream("synthesize", start, err)
	if err != nil {
		return nil, fmt.Errorf("synthesize with voice %q: %w", req.VoiceID, err)
	}
	return audio, nil
}

func (s *ProxyService) secret(ctx context.Context, orgID string) (string, error) {
	if strings.TrimSpace(orgID) == "" {
		return "", fmt.Errorf("%w: org_uuid is required", ErrInvalidRequest)
	}
	return s.vault.Resolve(ctx, orgID, s.provider.Name())
}
