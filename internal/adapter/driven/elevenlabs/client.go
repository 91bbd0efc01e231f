// Package elevenlabs implements the SpeechProvider port against the ElevenLabs REST API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.elevenlabs.io"

	// ProviderName is the credential provider key for this adapter.
	ProviderName = model.ProviderElevenLabs

	apiKeyHeader       = "xi-api-key"
	defaultAudioType   = "audio/mpeg"
	maxErrorBodyBytes  = 64 << 10
	defaultHistorySize = 25
)

// Compile-time interface satisfaction check.
var _ driven.SpeechProvider = (*Client)(nil)

// Client implements driven.SpeechProvider. It holds no credentials; every
// call receives the API key from the caller and drops it on return.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	logger  *slog.Logger
}

// NewClient creates a Client for baseURL. A zero timeout leaves the
// transport defaults in place.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	return NewClientWithHTTPClient(&http.Client{Timeout: timeout}, baseURL, logger)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Tests use it to point the adapter at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL %q: scheme and host are required", baseURL)
	}

	return &Client{http: httpClient, baseURL: u, logger: logger}, nil
}

// Name returns the provider key used for credential lookup.
func (c *Client) Name() string { return ProviderName }

// ValidateKey checks the key against the lightweight v1 voices endpoint.
func (c *Client) ValidateKey(ctx context.Context, apiKey string) error {
	_, err := c.do(ctx, apiKey, http.MethodGet, "/v1/voices", nil, nil, "")
	return err
}

// ListVoices returns the organization's personal voices.
func (c *Client) ListVoices(ctx context.Context, apiKey string) (model.VoiceList, error) {
	resp, err := c.do(ctx, apiKey, http.MethodGet, "/v2/voices", url.Values{"voice_type": {"personal"}}, nil, "")
	if err != nil {
		return model.VoiceList{}, err
	}

	var list model.VoiceList
	if err := json.Unmarshal(resp.body, &list); err != nil {
		return model.VoiceList{}, fmt.Errorf("decoding voices: %w", err)
	}
	if list.Voices == nil {
		list.Voices = []model.Voice{}
	}
	for i := range list.Voices {
		if list.Voices[i].Labels == nil {
			list.Voices[i].Labels = map[string]string{}
		}
	}
	return list, nil
}

// ListHistory returns the most recent generations. pageSize <= 0 selects 25.
func (c *Client) ListHistory(ctx context.Context, apiKey string, pageSize int) (model.HistoryList, error) {
	if pageSize <= 0 {
		pageSize = defaultHistorySize
	}

	resp, err := c.do(ctx, apiKey, http.MethodGet, "/v1/history", url.Values{"page_size": {strconv.Itoa(pageSize)}}, nil, "")
	if err != nil {
		return model.HistoryList{}, err
	}

	var list model.HistoryList
	if err := json.Unmarshal(resp.body, &list); err != nil {
		return model.HistoryList{}, fmt.Errorf("decoding history: %w", err)
	}
	if list.History == nil {
		list.History = []model.HistoryItem{}
	}
	return list, nil
}

// FetchHistoryAudio downloads the audio of one history item.
func (c *Client) FetchHistoryAudio(ctx context.Context, apiKey, historyItemID string) (model.Audio, error) {
	path := "/v1/history/" + url.PathEscape(historyItemID) + "/audio"
	resp, err := c.do(ctx, apiKey, http.MethodGet, path, nil, nil, defaultAudioType)
	if err != nil {
		return model.Audio{}, err
	}

	contentType := resp.header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultAudioType
	}
	return model.Audio{Data: resp.body, ContentType: contentType}, nil
}

// synthesizeBody is the JSON payload of the text-to-speech endpoint.
type synthesizeBody struct {
	Text          string                      `json:"text"`
	ModelID       string                      `json:"model_id"`
	VoiceSettings model.ResolvedVoiceSettings `json:"voice_settings"`
}

// Synthesize converts text to speech and returns the whole audio buffer.
func (c *Client) Synthesize(ctx context.Context, apiKey string, req model.SynthesisRequest) ([]byte, error) {
	modelID := req.ModelID
	if modelID == "" {
		modelID = model.DefaultModelID
	}

	payload, err := json.Marshal(synthesizeBody{
		Text:          req.Text,
		ModelID:       modelID,
		VoiceSettings: req.Settings,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding synthesis request: %w", err)
	}

	path := "/v1/text-to-speech/" + url.PathEscape(req.VoiceID)
	resp, err := c.do(ctx, apiKey, http.MethodPost, path, nil, payload, defaultAudioType)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

type response struct {
	header http.Header
	body   []byte
}

// do issues one authenticated request and maps failures onto the port's
// error taxonomy: transport errors become ErrUpstreamUnreachable, 401 becomes
// ErrInvalidCredential and every other non-2xx becomes *driven.UpstreamError.
func (c *Client) do(ctx context.Context, apiKey, method, path string, query url.Values, body []byte, accept string) (*response, error) {
	// path is already escaped; JoinPath keeps escaped segments intact.
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set(apiKeyHeader, apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		// url.Error embeds the request URL, never the header, so the key
		// cannot leak through this message.
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, driven.ErrUpstreamUnreachable, err)
	}
	defer httpResp.Body.Close()

	c.logger.Debug("elevenlabs api call",
		"method", method,
		"path", path,
		"status", httpResp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBodyBytes))
		upstream := &driven.UpstreamError{StatusCode: httpResp.StatusCode, Body: string(errBody)}
		if httpResp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%s %s: %w: %w", method, path, driven.ErrInvalidCredential, upstream)
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, upstream)
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w: %w", method, path, driven.ErrUpstreamUnreachable, err)
	}

	return &response{header: httpResp.Header, body: data}, nil
}
