package handler

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArtemisAI/thePodcaster/internal/api/dto"
	"github.com/ArtemisAI/thePodcaster/internal/datadir"
	"github.com/ArtemisAI/thePodcaster/internal/jobs"
)

// UploadAudio handles POST /api/audio/upload
// Receives multipart tracks for one episode: main_track is required, intro
// and outro are optional. Files land under uploads/<session>/ and each one
// gets an audio_files row.
func (h *Handler) UploadAudio(c *gin.Context) {
	mainTrack, err := c.FormFile("main_track")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "main_track file is required"})
		return
	}

	sessionID := uuid.New().String()
	saved := map[string]string{}

	// Store tracks in listening order so a later processing job merges the
	// episode as intro, main, outro.
	tracks := []struct {
		field string
		file  *multipart.FileHeader
	}{
		{field: "intro"},
		{field: "main_track", file: mainTrack},
		{field: "outro"},
	}
	for i := range tracks {
		if tracks[i].file != nil {
			continue
		}
		if file, err := c.FormFile(tracks[i].field); err == nil {
			tracks[i].file = file
		}
	}

	for _, track := range tracks {
		if track.file == nil {
			continue
		}

		relPath, err := h.saveUpload(c, track.file, sessionID)
		if err != nil {
			h.logger.Error("Failed to save uploaded file",
				slog.String("session_id", sessionID),
				slog.String("field", track.field),
				slog.String("filename", track.file.Filename),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save uploaded file"})
			return
		}
		saved[track.field] = relPath
	}

	h.logger.Info("Upload session created",
		slog.String("session_id", sessionID),
		slog.Int("files", len(saved)),
	)

	c.JSON(http.StatusOK, dto.UploadAudioResponse{
		UploadSessionID: sessionID,
		SavedFiles:      saved,
	})
}

// saveUpload writes one track to the session directory and records it.
// The stored name is the client filename stripped to its base, so a crafted
// filename cannot place the file outside the session directory.
func (h *Handler) saveUpload(c *gin.Context, file *multipart.FileHeader, sessionID string) (string, error) {
	filename := filepath.Base(file.Filename)
	if filename == "." || filename == string(filepath.Separator) || filename == "" {
		return "", os.ErrInvalid
	}

	sessionDir := h.layout.SessionDir(sessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return "", err
	}

	if err := c.SaveUploadedFile(file, filepath.Join(sessionDir, filename)); err != nil {
		return "", err
	}

	record := &jobs.AudioFile{
		OriginalFilename: file.Filename,
		SavedPath:        datadir.UploadRel(sessionID, filename),
		SessionID:        sessionID,
		FileSize:         file.Size,
		ContentType:      file.Header.Get("Content-Type"),
	}
	if err := h.storage.CreateAudioFile(c.Request.Context(), record); err != nil {
		return "", err
	}

	return record.SavedPath, nil
}

// ProcessAudio handles POST /api/audio/process/:session_id
// Creates an audio_processing job over the session's uploads and enqueues
// its task.
func (h *Handler) ProcessAudio(c *gin.Context) {
	sessionID := c.Param("session_id")

	files, err := h.storage.ListSessionFiles(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to list session files",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list session files"})
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upload session not found"})
		return
	}

	inputPaths := make([]string, len(files))
	for i, file := range files {
		inputPaths[i] = file.SavedPath
	}

	job, ok := h.submitJob(c, jobs.TypeAudioProcessing, func(job *jobs.Job) *jobs.TaskMessage {
		return &jobs.TaskMessage{
			JobID:   job.ID,
			JobType: jobs.TypeAudioProcessing,
			AudioProcessing: &jobs.AudioProcessingArgs{
				InputPaths:     inputPaths,
				OutputFilename: datadir.ProcessedAudioName(job.ID),
			},
		}
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": job.ID, "message": "Audio processing started."})
}

// AudioStatus handles GET /api/audio/status/:job_id
func (h *Handler) AudioStatus(c *gin.Context) {
	jobID, ok := parseIDParam(c, "job_id")
	if !ok {
		return
	}

	job, ok := h.loadJob(c, jobID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":           job.ID,
		"status":           job.Status,
		"output_file_path": job.OutputFilePath,
	})
}

// DownloadAudio handles GET /api/audio/download/:job_id
// Serves the processed audio file of a completed job.
func (h *Handler) DownloadAudio(c *gin.Context) {
	jobID, ok := parseIDParam(c, "job_id")
	if !ok {
		return
	}

	job, ok := h.loadJob(c, jobID)
	if !ok {
		return
	}

	h.serveArtifact(c, job, "Processed file not found on server")
}
