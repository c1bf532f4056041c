package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArtemisAI/thePodcaster/internal/api/dto"
	"github.com/ArtemisAI/thePodcaster/internal/datadir"
	"github.com/ArtemisAI/thePodcaster/internal/jobs"
)

// ProcessVideo handles POST /api/video/process/:audio_job_id
// Creates a video_generation job that renders a waveform video from the
// output of a finished audio job. The JSON body is optional; absent fields
// fall back to the renderer defaults.
func (h *Handler) ProcessVideo(c *gin.Context) {
	audioJobID, ok := parseIDParam(c, "audio_job_id")
	if !ok {
		return
	}

	source, err := h.storage.GetJob(c.Request.Context(), audioJobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Source job not found"})
			return
		}
		h.logger.Error("Failed to get source job",
			slog.Int64("job_id", audioJobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get job"})
		return
	}
	if source.OutputFilePath == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source job not found"})
		return
	}

	var req dto.ProcessVideoRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	job, ok := h.submitJob(c, jobs.TypeVideoGeneration, func(job *jobs.Job) *jobs.TaskMessage {
		return &jobs.TaskMessage{
			JobID:   job.ID,
			JobType: jobs.TypeVideoGeneration,
			VideoGeneration: &jobs.VideoGenerationArgs{
				SourcePath:          *source.OutputFilePath,
				OutputFilename:      datadir.WaveformVideoName(job.ID),
				Resolution:          req.Resolution,
				ForegroundColor:     req.FgColor,
				BackgroundColor:     req.BgColor,
				BackgroundImagePath: req.BackgroundImagePath,
			},
		}
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": job.ID, "message": "Video generation started."})
}

// DownloadVideo handles GET /api/video/download/:job_id
func (h *Handler) DownloadVideo(c *gin.Context) {
	jobID, ok := parseIDParam(c, "job_id")
	if !ok {
		return
	}

	job, ok := h.loadJob(c, jobID)
	if !ok {
		return
	}

	h.serveArtifact(c, job, "File not found")
}
