package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArtemisAI/thePodcaster/internal/jobs"
	"github.com/ArtemisAI/thePodcaster/internal/publish"
)

// PublishEpisode handles POST /api/publish/episode/:job_id
// Hands a completed job and its metadata to the n8n publishing workflow.
func (h *Handler) PublishEpisode(c *gin.Context) {
	jobID, ok := parseIDParam(c, "job_id")
	if !ok {
		return
	}

	job, ok := h.loadJob(c, jobID)
	if !ok {
		return
	}
	if job.Status != jobs.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job not completed"})
		return
	}

	result, err := h.publisher.PublishEpisode(c.Request.Context(), job)
	if err != nil {
		if errors.Is(err, publish.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Publishing is not configured"})
			return
		}
		h.logger.Error("Failed to publish episode",
			slog.Int64("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish episode"})
		return
	}

	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}

	h.logger.Info("Episode published", slog.Int64("job_id", job.ID))
	c.JSON(http.StatusOK, result)
}
