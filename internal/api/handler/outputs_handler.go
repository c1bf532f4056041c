package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListOutputs handles GET /api/outputs
// Returns the filenames in the exports directory.
func (h *Handler) ListOutputs(c *gin.Context) {
	entries, err := os.ReadDir(h.layout.OutputsDir())
	if err != nil {
		h.logger.Error("Failed to list output files", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing output files"})
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	c.JSON(http.StatusOK, names)
}

// DownloadOutput handles GET /api/outputs/:filename
func (h *Handler) DownloadOutput(c *gin.Context) {
	abs, ok := h.outputPath(c)
	if !ok {
		return
	}

	c.FileAttachment(abs, filepath.Base(abs))
}

// DeleteOutput handles DELETE /api/outputs/:filename
func (h *Handler) DeleteOutput(c *gin.Context) {
	abs, ok := h.outputPath(c)
	if !ok {
		return
	}

	if err := os.Remove(abs); err != nil {
		h.logger.Error("Failed to delete output file",
			slog.String("filename", filepath.Base(abs)),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete output file"})
		return
	}

	h.logger.Info("Output file deleted", slog.String("filename", filepath.Base(abs)))
	c.Status(http.StatusNoContent)
}

// outputPath validates the filename parameter and resolves it inside the
// exports directory, writing the error response itself when it fails.
func (h *Handler) outputPath(c *gin.Context) (string, bool) {
	filename := c.Param("filename")
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filename"})
		return "", false
	}

	abs := filepath.Join(h.layout.OutputsDir(), filename)
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Output file not found"})
		return "", false
	}

	return abs, true
}
