package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// GenerateRequest is one synthesis request from the host system.
type GenerateRequest struct {
	OrganizationID string
	ProjectID      string
	VoiceID        string
	Text           string
	TextFormat     model.TextFormat
	ModelID        string
	Settings       model.VoiceSettings
}

// GenerateResult is the synthesized audio and the job that recorded it.
// JobID is empty when the ledger could not record the attempt.
type GenerateResult struct {
	Audio []byte
	Size  int
	JobID string
}

// GenerationService runs the end-to-end synthesis flow: validate, resolve
// the secret, open a job, call the provider once and close the job.
type GenerationService struct {
	proxy      *ProxyService
	ledger     *JobLedger
	normalizer *TextNormalizer
	archive    driven.AudioArchive
	metrics    *Metrics
	logger     *slog.Logger
}

// NewGenerationService creates the orchestrator. archive and metrics may be nil.
func NewGenerationService(
	proxy *ProxyService,
	ledger *JobLedger,
	normalizer *TextNormalizer,
	archive driven.AudioArchive,
	metrics *Metrics,
	logger *slog.Logger,
) *GenerationService {
	return &GenerationService{
		proxy:      proxy,
		ledger:     ledger,
		normalizer: normalizer,
		archive:    archive,
		metrics:    metrics,
		logger:     logger,
	}
}

// Generate synthesizes req.Text. Invalid input, a missing credential and a
// corrupted credential all return before any job is written or any
// upstream call is made. Ledger and archive failures never fail the call.
func (g *GenerationService) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	synth, err := g.prepare(req)
	if err != nil {
		return GenerateResult{}, err
	}

	key, err := g.proxy.vault.Resolve(ctx, req.OrganizationID, g.proxy.provider.Name())
	if err != nil {
		return GenerateResult{}, err
	}

	job := g.ledger.Open(ctx, req.OrganizationID, model.JobMetadata{
		model.MetaVoiceID:       req.VoiceID,
		model.MetaText:          req.Text,
		model.MetaModelID:       synth.ModelID,
		model.MetaVoiceSettings: synth.Settings,
		model.MetaProjectID:     req.ProjectID,
	})

	audio, err := g.proxy.synthesize(ctx, key, synth)
	g.metrics.generation(err)
	if err != nil {
		g.ledger.Fail(ctx, job, model.JobMetadata{model.MetaError: failureReason(err)})
		g.logger.Warn("generation failed", "org_id", req.OrganizationID, "voice_id", req.VoiceID, "error", err)
		return GenerateResult{}, err
	}

	patch := model.JobMetadata{
		model.MetaAudioGenerated: true,
		model.MetaAudioSize:      len(audio),
	}
	if g.archiveAudio(ctx, job, audio) {
		patch[model.MetaArchived] = true
	}
	g.ledger.Complete(ctx, job, patch)

	result := GenerateResult{Audio: audio, Size: len(audio)}
	if job != nil {
		result.JobID = job.ID
	}

	g.logger.Info("generation completed", "org_id", req.OrganizationID, "job_id", result.JobID, "audio_size", result.Size)
	return result, nil
}

func (g *GenerationService) prepare(req GenerateRequest) (model.SynthesisRequest, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"org_uuid", req.OrganizationID},
		{"project_uuid", req.ProjectID},
		{"voice_id", req.VoiceID},
		{"text", req.Text},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return model.SynthesisRequest{}, fmt.Errorf("%w: missing required fields: %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}

	settings := req.Settings.Resolve()
	if !settings.InRange() {
		return model.SynthesisRequest{}, fmt.Errorf("%w: voice_settings values must be between 0 and 1", ErrInvalidRequest)
	}

	text, err := g.normalizer.Normalize(req.Text, req.TextFormat)
	if err != nil {
		return model.SynthesisRequest{}, err
	}
	if strings.TrimSpace(text) == "" {
		return model.SynthesisRequest{}, fmt.Errorf("%w: text is empty after removing markup", ErrInvalidRequest)
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = model.DefaultModelID
	}

	return model.SynthesisRequest{
		VoiceID:  req.VoiceID,
		Text:     text,
		ModelID:  modelID,
		Settings: settings,
	}, nil
}

// archiveAudio stores the clip under the job id. It reports whether the
// upload succeeded; a job-less generation is never archived.
func (g *GenerationService) archiveAudio(ctx context.Context, job *model.Job, audio []byte) bool {
	if g.archive == nil || job == nil {
		return false
	}
	if err := g.archive.Upload(context.WithoutCancel(ctx), job.ID, audio); err != nil {
		g.logger.Error("failed to archive audio", "job_id", job.ID, "error", err)
		return false
	}
	return true
}

// failureReason classifies err for the job record without leaking upstream
// bodies or secrets.
func failureReason(err error) string {
	var upstream *driven.UpstreamError
	switch {
	case errors.Is(err, driven.ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, driven.ErrUpstreamUnreachable):
		return "upstream_unreachable"
	case errors.As(err, &upstream):
		return fmt.Sprintf("upstream_status_%d", upstream.StatusCode)
	default:
		return "internal"
	}
}
