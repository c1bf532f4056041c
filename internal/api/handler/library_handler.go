package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/ArtemisAI/thePodcaster/internal/api/dto"
	"github.com/ArtemisAI/thePodcaster/internal/jobs"
)

// ListLibrary handles GET /api/library
// Returns every completed job that still has an artifact on record, with a
// ready-to-use download URL per item.
func (h *Handler) ListLibrary(c *gin.Context) {
	list, err := h.storage.ListLibrary(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list library", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list library"})
		return
	}

	items := make([]dto.LibraryItem, len(list))
	for i := range list {
		job := &list[i]
		items[i] = dto.LibraryItem{
			JobID:          job.ID,
			JobType:        string(job.JobType),
			OutputFilePath: *job.OutputFilePath,
			DownloadURL:    downloadURL(job),
		}
	}

	c.JSON(http.StatusOK, items)
}

func downloadURL(job *jobs.Job) string {
	switch job.JobType {
	case jobs.TypeAudioProcessing:
		return fmt.Sprintf("/api/audio/download/%d", job.ID)
	case jobs.TypeVideoGeneration:
		return fmt.Sprintf("/api/video/download/%d", job.ID)
	default:
		return fmt.Sprintf("/api/outputs/%s", path.Base(*job.OutputFilePath))
	}
}

// DeleteLibraryItem handles DELETE /api/library/:job_id
// Removes the artifact from disk and clears the job's output path. The job
// row itself stays so history remains queryable.
func (h *Handler) DeleteLibraryItem(c *gin.Context) {
	jobID, ok := parseIDParam(c, "job_id")
	if !ok {
		return
	}

	job, ok := h.loadJob(c, jobID)
	if !ok {
		return
	}
	if job.OutputFilePath == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No artifact recorded for job"})
		return
	}

	abs, err := h.layout.Resolve(*job.OutputFilePath)
	if err != nil {
		h.logger.Error("Refused to delete artifact outside data root",
			slog.Int64("job_id", job.ID),
			slog.String("path", *job.OutputFilePath),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete artifact"})
		return
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		h.logger.Error("Failed to delete artifact",
			slog.Int64("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete artifact"})
		return
	}

	if err := h.storage.ClearOutputPath(c.Request.Context(), job.ID); err != nil {
		h.logger.Error("Failed to clear output path",
			slog.Int64("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete artifact"})
		return
	}

	h.logger.Info("Library artifact deleted", slog.Int64("job_id", job.ID))
	c.Status(http.StatusNoContent)
}
