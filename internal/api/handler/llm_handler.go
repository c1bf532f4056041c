package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArtemisAI/thePodcaster/internal/jobs"
	"github.com/ArtemisAI/thePodcaster/internal/llm"
)

// SuggestFromJob handles POST /api/llm/suggest/from_job/:job_id
// Reads the transcript produced by a completed transcription job and asks
// the language model for titles and a summary.
func (h *Handler) SuggestFromJob(c *gin.Context) {
	jobID, ok := parseIDParam(c, "job_id")
	if !ok {
		return
	}

	job, ok := h.loadJob(c, jobID)
	if !ok {
		return
	}
	if job.JobType != jobs.TypeTranscription {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job is not a transcription job"})
		return
	}
	if job.Status != jobs.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job has not yet completed"})
		return
	}

	transcript, ok := h.readTranscriptFile(c, job)
	if !ok {
		return
	}

	promptType := c.DefaultQuery("prompt_type", llm.PromptTitleSummary)
	suggestion, result, ok := h.generateAndStore(c, &job.ID, transcript, promptType)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestion_id": suggestion.ID,
		"job_id":        job.ID,
		"prompt_type":   promptType,
		"titles":        result.Titles,
		"summary":       result.Summary,
		"model_used":    suggestion.ModelUsed,
	})
}

// SuggestFromText handles POST /api/llm/suggest/from_text
// Same as SuggestFromJob but over a raw transcript in the request body, so
// callers can get suggestions for text that never went through the pipeline.
func (h *Handler) SuggestFromText(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	transcript := strings.TrimSpace(string(body))
	if transcript == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transcript text is empty"})
		return
	}

	promptType := c.DefaultQuery("prompt_type", llm.PromptTitleSummary)
	suggestion, result, ok := h.generateAndStore(c, nil, transcript, promptType)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestion_id": suggestion.ID,
		"prompt_type":   promptType,
		"titles":        result.Titles,
		"summary":       result.Summary,
		"model_used":    suggestion.ModelUsed,
	})
}

// readTranscriptFile loads the SRT artifact of a transcription job, writing
// the error response itself when it fails.
func (h *Handler) readTranscriptFile(c *gin.Context, job *jobs.Job) (string, bool) {
	notFound := func() {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Transcript file not found for job %d", job.ID),
		})
	}

	if job.OutputFilePath == nil {
		notFound()
		return "", false
	}
	abs, err := h.layout.Resolve(*job.OutputFilePath)
	if err != nil {
		notFound()
		return "", false
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		notFound()
		return "", false
	}

	transcript := strings.TrimSpace(string(raw))
	if transcript == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Transcript for job %d is empty", job.ID),
		})
		return "", false
	}
	return transcript, true
}

// generateAndStore asks the model for suggestions and persists the result,
// writing the error response itself when it fails.
func (h *Handler) generateAndStore(c *gin.Context, jobID *int64, transcript, promptType string) (*jobs.Suggestion, *llm.Suggestions, bool) {
	result, err := h.llm.Suggest(c.Request.Context(), transcript, promptType)
	if err != nil {
		var badReply *llm.BadReplyError
		switch {
		case errors.Is(err, llm.ErrInvalidPromptType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prompt type"})
		case errors.As(err, &badReply):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": fmt.Sprintf("Error from LLM service: %s", badReply.Reason),
			})
		default:
			h.logger.Error("Failed to generate LLM suggestions", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate LLM suggestions"})
		}
		return nil, nil, false
	}

	titles, err := json.Marshal(result.Titles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store suggestion"})
		return nil, nil, false
	}

	suggestion := &jobs.Suggestion{
		JobID:            jobID,
		PromptType:       promptType,
		ModelUsed:        h.llm.Model(),
		Titles:           string(titles),
		SuggestedSummary: result.Summary,
	}
	if err := h.storage.CreateSuggestion(c.Request.Context(), suggestion); err != nil {
		h.logger.Error("Failed to store suggestion", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store suggestion"})
		return nil, nil, false
	}

	return suggestion, result, true
}

// GetSuggestion handles GET /api/llm/suggestions/:suggestion_id
func (h *Handler) GetSuggestion(c *gin.Context) {
	suggestionID, ok := parseIDParam(c, "suggestion_id")
	if !ok {
		return
	}

	suggestion, err := h.storage.GetSuggestion(c.Request.Context(), suggestionID)
	if err != nil {
		if errors.Is(err, jobs.ErrSuggestionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Suggestion not found"})
			return
		}
		h.logger.Error("Failed to get suggestion",
			slog.Int64("suggestion_id", suggestionID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get suggestion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestion_id": suggestion.ID,
		"job_id":        suggestion.JobID,
		"prompt_type":   suggestion.PromptType,
		"titles":        suggestion.TitleList(),
		"summary":       suggestion.SuggestedSummary,
		"model_used":    suggestion.ModelUsed,
	})
}

// ListSuggestionsByJob handles GET /api/jobs/:job_id/suggestions
func (h *Handler) ListSuggestionsByJob(c *gin.Context) {
	jobID, ok := parseIDParam(c, "job_id")
	if !ok {
		return
	}

	if _, ok := h.loadJob(c, jobID); !ok {
		return
	}

	list, err := h.storage.ListSuggestionsByJob(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to list suggestions",
			slog.Int64("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list suggestions"})
		return
	}

	items := make([]gin.H, len(list))
	for i, suggestion := range list {
		items[i] = gin.H{
			"suggestion_id": suggestion.ID,
			"titles":        suggestion.TitleList(),
			"summary":       suggestion.SuggestedSummary,
		}
	}

	c.JSON(http.StatusOK, items)
}
