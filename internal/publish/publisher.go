package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/ArtemisAI/thePodcaster/internal/datadir"
	"github.com/ArtemisAI/thePodcaster/internal/jobs"
)

// ErrNotConfigured is returned when no webhook URL is set.
var ErrNotConfigured = errors.New("n8n webhook URL is not configured")

// Store is the slice of persistence the publisher reads from.
type Store interface {
	GetJob(ctx context.Context, jobID int64) (*jobs.Job, error)
	LatestSuggestionByJob(ctx context.Context, jobID int64) (*jobs.Suggestion, error)
}

// Config holds n8n publisher configuration
type Config struct {
	WebhookURL string
	APIKey     string
	Timeout    time.Duration
}

const defaultTimeout = 60 * time.Second

// Publisher triggers the n8n publishing workflow for finished episodes.
type Publisher struct {
	webhookURL string
	apiKey     string
	httpClient *http.Client
	store      Store
	layout     datadir.Layout
	logger     *slog.Logger
}

// NewPublisher creates a new Publisher instance
func NewPublisher(cfg *Config, store Store, layout datadir.Layout, logger *slog.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Publisher{
		webhookURL: cfg.WebhookURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		layout:     layout,
		logger:     logger,
	}
}

// Result reports the outcome of a webhook call. Webhook-side failures are
// reported here rather than as an error so callers can relay them.
type Result struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Response json.RawMessage `json:"n8n_response,omitempty"`
	Details  string          `json:"details,omitempty"`
}

// episodePayload is the body posted to the n8n webhook. n8n shares the data
// volume, so file paths are sent absolute.
type episodePayload struct {
	JobID             int64     `json:"job_id"`
	JobType           jobs.Type `json:"job_type"`
	MediaType         string    `json:"media_type"`
	MediaFilePath     *string   `json:"media_file_path"`
	Title             *string   `json:"title"`
	Summary           *string   `json:"summary"`
	TranscriptSRTPath *string   `json:"transcript_srt_path"`
	TranscriptTXTPath *string   `json:"transcript_txt_path"`
	CreatedAt         string    `json:"created_at"`
}

// PublishEpisode gathers episode metadata for a job and posts it to the
// configured n8n webhook.
func (p *Publisher) PublishEpisode(ctx context.Context, job *jobs.Job) (*Result, error) {
	if p.webhookURL == "" {
		return nil, ErrNotConfigured
	}

	payload, err := p.buildPayload(ctx, job)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-N8N-API-KEY", p.apiKey)
	}

	p.logger.Info("Triggering n8n workflow",
		slog.Int64("job_id", job.ID),
		slog.String("media_type", payload.MediaType),
	)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("n8n request failed",
			slog.Int64("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		return &Result{
			Success: false,
			Message: "Request to n8n failed.",
			Details: err.Error(),
		}, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{
			Success: false,
			Message: "Request to n8n failed.",
			Details: err.Error(),
		}, nil
	}

	if resp.StatusCode >= http.StatusBadRequest {
		p.logger.Error("n8n returned an error status",
			slog.Int64("job_id", job.ID),
			slog.Int("status", resp.StatusCode),
		)
		return &Result{
			Success: false,
			Message: fmt.Sprintf("HTTP error from n8n: %d", resp.StatusCode),
			Details: string(respBody),
		}, nil
	}

	result := &Result{
		Success: true,
		Message: "n8n workflow triggered successfully.",
	}
	if json.Valid(respBody) {
		result.Response = json.RawMessage(respBody)
	}

	p.logger.Info("n8n workflow triggered",
		slog.Int64("job_id", job.ID),
		slog.Int("status", resp.StatusCode),
	)

	return result, nil
}

func (p *Publisher) buildPayload(ctx context.Context, job *jobs.Job) (*episodePayload, error) {
	payload := &episodePayload{
		JobID:     job.ID,
		JobType:   job.JobType,
		MediaType: mediaTypeFor(job),
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	}

	if job.OutputFilePath != nil {
		abs, err := p.layout.Resolve(*job.OutputFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve media path: %w", err)
		}
		payload.MediaFilePath = &abs
	}

	suggestion, err := p.store.LatestSuggestionByJob(ctx, job.ID)
	if err != nil && !errors.Is(err, jobs.ErrSuggestionNotFound) {
		return nil, fmt.Errorf("failed to load latest suggestion: %w", err)
	}
	if suggestion != nil {
		if titles := suggestion.TitleList(); len(titles) > 0 {
			payload.Title = &titles[0]
		}
		payload.Summary = &suggestion.SuggestedSummary
	}

	if src := p.transcriptSource(ctx, job, suggestion); src != nil && src.OutputFilePath != nil {
		srtRel := *src.OutputFilePath
		txtRel := strings.TrimSuffix(srtRel, path.Ext(srtRel)) + ".txt"

		srtAbs, err := p.layout.Resolve(srtRel)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve transcript path: %w", err)
		}
		txtAbs, err := p.layout.Resolve(txtRel)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve transcript path: %w", err)
		}

		payload.TranscriptSRTPath = &srtAbs
		payload.TranscriptTXTPath = &txtAbs
	}

	return payload, nil
}

// transcriptSource picks the transcription job whose artifacts accompany the
// episode: the job itself when it is a transcription, otherwise the
// transcription job the latest suggestion was generated from.
func (p *Publisher) transcriptSource(ctx context.Context, job *jobs.Job, suggestion *jobs.Suggestion) *jobs.Job {
	if job.JobType == jobs.TypeTranscription {
		return job
	}
	if suggestion == nil || suggestion.JobID == nil || *suggestion.JobID == job.ID {
		return nil
	}

	linked, err := p.store.GetJob(ctx, *suggestion.JobID)
	if err != nil {
		p.logger.Warn("Failed to load suggestion source job",
			slog.Int64("job_id", job.ID),
			slog.Int64("suggestion_job_id", *suggestion.JobID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if linked.JobType != jobs.TypeTranscription {
		return nil
	}

	return linked
}

func mediaTypeFor(job *jobs.Job) string {
	if job.OutputFilePath == nil {
		return "unknown"
	}

	ext := strings.ToLower(path.Ext(*job.OutputFilePath))
	switch {
	case job.JobType == jobs.TypeVideoGeneration && ext == ".mp4":
		return "video"
	case job.JobType == jobs.TypeAudioProcessing && ext == ".mp3":
		return "audio"
	}

	return "unknown"
}
