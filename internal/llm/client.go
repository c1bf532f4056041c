package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Prompt types accepted by Suggest.
const (
	PromptTitleSummary = "title_summary"
	PromptTitleOnly    = "title_only"
	PromptSummaryOnly  = "summary_only"
)

// ErrInvalidPromptType is returned when the caller asks for a prompt type
// no template exists for.
var ErrInvalidPromptType = errors.New("invalid prompt_type")

// BadReplyError means Ollama answered but its reply could not be used.
type BadReplyError struct {
	Reason  string
	Details string
}

func (e *BadReplyError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("llm: %s", e.Reason)
	}
	return fmt.Sprintf("llm: %s: %s", e.Reason, e.Details)
}

var promptTemplates = map[string]string{
	PromptTitleSummary: "You are helping a podcaster prepare an episode for release. " +
		"Based on the transcript below, respond with a single JSON object of the form " +
		`{"titles": ["..."], "summary": "..."}` +
		" containing 3 to 5 suggested episode titles and a summary of at most 150 words. " +
		"Respond with JSON only, no extra text.\n\nTranscript:\n%s",
	PromptTitleOnly: "Suggest 3 to 5 titles for the podcast episode transcribed below. " +
		"Respond with a single JSON object of the form " +
		`{"titles": ["..."]}` +
		" and nothing else.\n\nTranscript:\n%s",
	PromptSummaryOnly: "Summarize the podcast episode transcribed below in at most 150 words. " +
		"Respond with a single JSON object of the form " +
		`{"summary": "..."}` +
		" and nothing else.\n\nTranscript:\n%s",
}

const defaultTimeout = 120 * time.Second

// Config holds Ollama client configuration
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to an Ollama server's generate endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Client instance
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Model returns the model name suggestions are generated with.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

// generateResponse is the non-streaming reply shape. Response holds the
// model's text, which our prompts ask to be a JSON object.
type generateResponse struct {
	Response *string `json:"response"`
}

// Suggestions is the parsed model output. Titles is never nil.
type Suggestions struct {
	Titles  []string
	Summary string
}

// Suggest asks the model for title/summary suggestions for a transcript.
func (c *Client) Suggest(ctx context.Context, transcript, promptType string) (*Suggestions, error) {
	template, ok := promptTemplates[promptType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPromptType, promptType)
	}

	reqBody, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: fmt.Sprintf(template, transcript),
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode generate request: %w", err)
	}

	url := c.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Requesting LLM suggestions",
		slog.String("url", url),
		slog.String("model", c.model),
		slog.String("prompt_type", promptType),
		slog.Int("transcript_len", len(transcript)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ollama response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var reply generateResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, &BadReplyError{Reason: "failed to parse ollama response", Details: err.Error()}
	}
	if reply.Response == nil {
		return nil, &BadReplyError{Reason: "ollama response missing 'response' field"}
	}

	return parseSuggestions(*reply.Response)
}

// parseSuggestions decodes the model reply. Fields of the wrong type are
// dropped rather than failing the whole call; models get the shape wrong
// often enough that strictness here would lose usable suggestions.
func parseSuggestions(reply string) (*Suggestions, error) {
	var fields struct {
		Titles  json.RawMessage `json:"titles"`
		Summary json.RawMessage `json:"summary"`
	}
	if err := json.Unmarshal([]byte(reply), &fields); err != nil {
		return nil, &BadReplyError{Reason: "failed to parse model reply as JSON", Details: reply}
	}

	out := &Suggestions{Titles: []string{}}

	if len(fields.Titles) > 0 {
		var titles []string
		if err := json.Unmarshal(fields.Titles, &titles); err == nil && titles != nil {
			out.Titles = titles
		}
	}

	if len(fields.Summary) > 0 {
		var summary string
		if err := json.Unmarshal(fields.Summary, &summary); err == nil {
			out.Summary = summary
		} else {
			out.Summary = "Could not extract summary."
		}
	}

	return out, nil
}
