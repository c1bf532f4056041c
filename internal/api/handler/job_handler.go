package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArtemisAI/thePodcaster/internal/api/dto"
	"github.com/ArtemisAI/thePodcaster/internal/api/storage"
)

// ListJobs handles GET /api/jobs
// Returns jobs newest first, optionally filtered by status and job type,
// with cursor-based pagination.
func (h *Handler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := storage.DecodeJobCursor(req.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
		return
	}

	filter := storage.JobFilter{
		Status:   req.Status,
		JobType:  req.JobType,
		PageSize: req.PageSize,
		Cursor:   cursor,
	}

	list, err := h.storage.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs"})
		return
	}

	hasMore := len(list) > req.PageSize
	if hasMore {
		list = list[:req.PageSize]
	}

	resp := dto.ListJobsResponse{Jobs: make([]dto.JobDTO, len(list))}
	for i, job := range list {
		resp.Jobs[i] = dto.JobDTO{
			ID:             job.ID,
			JobType:        string(job.JobType),
			Status:         string(job.Status),
			OutputFilePath: job.OutputFilePath,
			ErrorMessage:   job.ErrorMessage,
			CreatedAt:      job.CreatedAt.Format(time.RFC3339),
		}
	}
	if hasMore {
		last := list[len(list)-1]
		resp.NextCursor = storage.EncodeJobCursor(&storage.JobCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GetJob handles GET /api/jobs/:job_id
func (h *Handler) GetJob(c *gin.Context) {
	jobID, ok := parseIDParam(c, "job_id")
	if !ok {
		return
	}

	job, ok := h.loadJob(c, jobID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.JobDTO{
		ID:             job.ID,
		JobType:        string(job.JobType),
		Status:         string(job.Status),
		OutputFilePath: job.OutputFilePath,
		ErrorMessage:   job.ErrorMessage,
		CreatedAt:      job.CreatedAt.Format(time.RFC3339),
	})
}
