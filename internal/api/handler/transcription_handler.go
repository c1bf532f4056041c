package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArtemisAI/thePodcaster/internal/api/dto"
	"github.com/ArtemisAI/thePodcaster/internal/datadir"
	"github.com/ArtemisAI/thePodcaster/internal/jobs"
)

// ProcessTranscription handles POST /api/transcription/process/:audio_job_id
// Creates a transcription job over the output of a finished audio job.
func (h *Handler) ProcessTranscription(c *gin.Context) {
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

	job, ok := h.submitJob(c, jobs.TypeTranscription, func(job *jobs.Job) *jobs.TaskMessage {
		return &jobs.TaskMessage{
			JobID:   job.ID,
			JobType: jobs.TypeTranscription,
			Transcription: &jobs.TranscriptionArgs{
				SourcePath:     *source.OutputFilePath,
				OutputBasename: datadir.TranscriptBasename(job.ID),
			},
		}
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": job.ID, "message": "Transcription started."})
}

// GetTranscript handles GET /api/transcription/:job_id
// Returns the stored transcript text and SRT for a transcription job.
func (h *Handler) GetTranscript(c *gin.Context) {
	jobID, ok := parseIDParam(c, "job_id")
	if !ok {
		return
	}

	if _, ok := h.loadJob(c, jobID); !ok {
		return
	}

	transcript, err := h.storage.GetTranscriptByJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrTranscriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transcript not found"})
			return
		}
		h.logger.Error("Failed to get transcript",
			slog.Int64("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transcript"})
		return
	}

	c.JSON(http.StatusOK, dto.TranscriptResponse{
		JobID:     transcript.ProcessingJobID,
		Language:  transcript.Language,
		Text:      transcript.TextContent,
		SRT:       transcript.SRTContent,
		CreatedAt: transcript.CreatedAt.Format(time.RFC3339),
	})
}
