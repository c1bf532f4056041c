package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ArtemisAI/thePodcaster/internal/api/storage"
	"github.com/ArtemisAI/thePodcaster/internal/datadir"
	"github.com/ArtemisAI/thePodcaster/internal/jobs"
	"github.com/ArtemisAI/thePodcaster/internal/llm"
	"github.com/ArtemisAI/thePodcaster/internal/publish"
	"github.com/ArtemisAI/thePodcaster/shared/postgresql"
	"github.com/ArtemisAI/thePodcaster/shared/rabbitmq"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	DBClient     *postgresql.Client
	RabbitClient *rabbitmq.Client
	Layout       datadir.Layout
	LLM          *llm.Client
	Publisher    *publish.Publisher
}

// Handler handles pipeline HTTP requests
type Handler struct {
	logger       *slog.Logger
	storage      *storage.Storage
	rabbitClient *rabbitmq.Client
	layout       datadir.Layout
	llm          *llm.Client
	publisher    *publish.Publisher
}

// NewHandler creates a new Handler instance
func NewHandler(deps *Dependencies) *Handler {
	return &Handler{
		logger:       deps.Logger,
		storage:      storage.NewStorage(deps.DBClient),
		rabbitClient: deps.RabbitClient,
		layout:       deps.Layout,
		llm:          deps.LLM,
		publisher:    deps.Publisher,
	}
}

// parseIDParam reads a numeric path parameter, answering 400 itself when the
// value is not a positive integer.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("%s must be a positive integer", name),
		})
		return 0, false
	}
	return id, true
}

// loadJob fetches a job row, answering 404/500 itself on failure.
func (h *Handler) loadJob(c *gin.Context, jobID int64) (*jobs.Job, bool) {
	job, err := h.storage.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		} else {
			h.logger.Error("Failed to get job",
				slog.Int64("job_id", jobID),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get job"})
		}
		return nil, false
	}
	return job, true
}

// submitJob creates a PENDING row and publishes its task message. When
// publishing fails the row stays PENDING and the client gets a 502, so the
// stuck job remains visible for diagnosis.
func (h *Handler) submitJob(c *gin.Context, jobType jobs.Type, build func(job *jobs.Job) *jobs.TaskMessage) (*jobs.Job, bool) {
	job, err := h.storage.CreateJob(c.Request.Context(), jobType)
	if err != nil {
		h.logger.Error("Failed to create job",
			slog.String("job_type", string(jobType)),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job"})
		return nil, false
	}

	body, err := json.Marshal(build(job))
	if err != nil {
		h.logger.Error("Failed to encode task message",
			slog.Int64("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode task message"})
		return nil, false
	}

	if err := h.rabbitClient.PublishWithRetry(c.Request.Context(), body, "application/json"); err != nil {
		h.logger.Error("Failed to publish task message",
			slog.Int64("job_id", job.ID),
			slog.String("job_type", string(jobType)),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to enqueue job"})
		return nil, false
	}

	h.logger.Info("Job submitted",
		slog.Int64("job_id", job.ID),
		slog.String("job_type", string(jobType)),
	)

	return job, true
}

// serveArtifact streams a completed job's output file as a download.
func (h *Handler) serveArtifact(c *gin.Context, job *jobs.Job, missingMessage string) {
	if job.Status != jobs.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job not completed"})
		return
	}
	if job.OutputFilePath == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": missingMessage})
		return
	}

	abs, err := h.layout.Resolve(*job.OutputFilePath)
	if err != nil {
		h.logger.Error("Failed to resolve artifact path",
			slog.Int64("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve artifact path"})
		return
	}

	if _, err := os.Stat(abs); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": missingMessage})
		return
	}

	c.FileAttachment(abs, filepath.Base(abs))
}
