package application_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ttsvault/internal/application"
	"github.com/ericfisherdev/ttsvault/internal/crypto"
	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// --- Mock implementations ---

type credKey struct{ org, provider string }

type mockCredentialStore struct {
	mu      sync.Mutex
	records map[credKey][]byte
	getErr  error
	upserts int
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{records: map[credKey][]byte{}}
}

func (m *mockCredentialStore) GetCredential(_ context.Context, orgID, provider string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	ct, ok := m.records[credKey{orgID, provider}]
	if !ok {
		return nil, driven.ErrNotFound
	}
	return bytes.Clone(ct), nil
}

func (m *mockCredentialStore) UpsertCredential(_ context.Context, orgID, provider string, ciphertext []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	m.records[credKey{orgID, provider}] = bytes.Clone(ciphertext)
	return nil
}

func (m *mockCredentialStore) DeleteCredential(_ context.Context, orgID, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := credKey{orgID, provider}
	if _, ok := m.records[k]; !ok {
		return driven.ErrNotFound
	}
	delete(m.records, k)
	return nil
}

type mockOrgStore struct {
	mu   sync.Mutex
	orgs map[string]model.Organization
}

func newMockOrgStore() *mockOrgStore {
	return &mockOrgStore{orgs: map[string]model.Organization{}}
}

func (m *mockOrgStore) UpsertOrganization(_ context.Context, orgID, name string) (model.Organization, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, exists := m.orgs[orgID]
	if !exists {
		org = model.Organization{ID: orgID, CreatedAt: time.Now()}
	}
	org.Name = name
	org.UpdatedAt = time.Now()
	m.orgs[orgID] = org
	return org, !exists, nil
}

func (m *mockOrgStore) GetOrganization(_ context.Context, orgID string) (model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[orgID]
	if !ok {
		return model.Organization{}, driven.ErrNotFound
	}
	return org, nil
}

type mockJobStore struct {
	mu          sync.Mutex
	jobs        map[string]model.Job
	createErr   error
	updateErr   error
	createCalls int
	updateCalls int
}

func newMockJobStore() *mockJobStore {
	return &mockJobStore{jobs: map[string]model.Job{}}
}

func (m *mockJobStore) Create(_ context.Context, job model.Job) (model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return model.Job{}, m.createErr
	}
	job.ID = uuid.NewString()
	job.Metadata = model.JobMetadata(nil).Merge(job.Metadata)
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	m.jobs[job.ID] = job
	return job, nil
}

func (m *mockJobStore) Get(_ context.Context, id string) (model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return model.Job{}, driven.ErrNotFound
	}
	return job, nil
}

func (m *mockJobStore) Update(_ context.Context, id string, status *model.JobStatus, patch model.JobMetadata) (model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return model.Job{}, m.updateErr
	}
	job, ok := m.jobs[id]
	if !ok {
		return model.Job{}, driven.ErrNotFound
	}
	if status != nil {
		job.Status = *status
	}
	job.Metadata = job.Metadata.Merge(patch)
	job.UpdatedAt = time.Now()
	m.jobs[id] = job
	return job, nil
}

func (m *mockJobStore) all() []model.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	return out
}

type mockProvider struct {
	mu        sync.Mutex
	calls     int
	lastKey   string
	lastSynth model.SynthesisRequest
	lastPage  int
	audio     []byte
	err       error
	voices    model.VoiceList
	history   model.HistoryList
	clip      model.Audio
}

func (m *mockProvider) Name() string { return model.ProviderElevenLabs }

func (m *mockProvider) record(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastKey = key
	return m.err
}

func (m *mockProvider) ValidateKey(_ context.Context, apiKey string) error {
	return m.record(apiKey)
}

func (m *mockProvider) ListVoices(_ context.Context, apiKey string) (model.VoiceList, error) {
	if err := m.record(apiKey); err != nil {
		return model.VoiceList{}, err
	}
	return m.voices, nil
}

func (m *mockProvider) ListHistory(_ context.Context, apiKey string, pageSize int) (model.HistoryList, error) {
	m.mu.Lock()
	m.lastPage = pageSize
	m.mu.Unlock()
	if err := m.record(apiKey); err != nil {
		return model.HistoryList{}, err
	}
	return m.history, nil
}

func (m *mockProvider) FetchHistoryAudio(_ context.Context, apiKey, _ string) (model.Audio, error) {
	if err := m.record(apiKey); err != nil {
		return model.Audio{}, err
	}
	return m.clip, nil
}

func (m *mockProvider) Synthesize(_ context.Context, apiKey string, req model.SynthesisRequest) ([]byte, error) {
	m.mu.Lock()
	m.lastSynth = req
	m.mu.Unlock()
	if err := m.record(apiKey); err != nil {
		return nil, err
	}
	return m.audio, nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (m *mockArchive) Upload(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = bytes.Clone(data)
	return nil
}

func (m *mockArchive) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, driven.ErrNotFound
	}
	return data, nil
}

// --- Fixtures ---

var testKey = bytes.Repeat([]byte{0x42}, crypto.KeySize)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) *crypto.Engine {
	t.Helper()
	engine, err := crypto.NewEngine(testKey)
	require.NoError(t, err)
	return engine
}

type fixture struct {
	creds    *mockCredentialStore
	orgs     *mockOrgStore
	jobs     *mockJobStore
	provider *mockProvider
	archive  *mockArchive
	vault    *application.CredentialVault
	ledger   *application.JobLedger
	proxy    *application.ProxyService
	gen      *application.GenerationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		creds:    newMockCredentialStore(),
		orgs:     newMockOrgStore(),
		jobs:     newMockJobStore(),
		provider: &mockProvider{},
		archive:  &mockArchive{},
	}
	logger := discardLogger()
	f.vault = application.NewCredentialVault(f.creds, f.orgs, newTestEngine(t), logger)
	f.ledger = application.NewJobLedger(f.jobs, nil, logger)
	f.proxy = application.NewProxyService(f.vault, f.provider, nil, logger)
	f.gen = application.NewGenerationService(f.proxy, f.ledger, application.NewTextNormalizer(), f.archive, nil, logger)
	return f
}

func (f *fixture) storeSecret(t *testing.T, orgID, secret string) {
	t.Helper()
	require.NoError(t, f.vault.Store(context.Background(), orgID, model.ProviderElevenLabs, secret))
}
