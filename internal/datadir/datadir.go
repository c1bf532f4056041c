// Package datadir resolves every artifact location under the single data
// root shared by the API service, the workers, and external workflow tools.
// Database rows and queue payloads always carry slash-separated paths
// relative to this root; only the process touching the disk resolves them.
package datadir

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	uploadsDir     = "uploads"
	processedDir   = "processed"
	transcriptsDir = "transcripts"
	outputsDir     = "outputs"
)

// Layout is a validated view of the data root directory tree.
type Layout struct {
	root string
}

// New creates a Layout rooted at root. The directory itself is created
// lazily by EnsureDirs.
func New(root string) Layout {
	return Layout{root: filepath.Clean(root)}
}

// Root returns the absolute data root path.
func (l Layout) Root() string {
	return l.root
}

// UploadsDir holds raw uploads grouped into per-session subdirectories.
func (l Layout) UploadsDir() string {
	return filepath.Join(l.root, uploadsDir)
}

// SessionDir is the upload directory for one session id.
func (l Layout) SessionDir(sessionID string) string {
	return filepath.Join(l.root, uploadsDir, sessionID)
}

// ProcessedDir holds finished audio and video artifacts.
func (l Layout) ProcessedDir() string {
	return filepath.Join(l.root, processedDir)
}

// TranscriptsDir holds transcript text files.
func (l Layout) TranscriptsDir() string {
	return filepath.Join(l.root, transcriptsDir)
}

// OutputsDir holds files written back by external workflows.
func (l Layout) OutputsDir() string {
	return filepath.Join(l.root, outputsDir)
}

// EnsureDirs creates the root and all standard subdirectories.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{
		l.root,
		l.UploadsDir(),
		l.ProcessedDir(),
		l.TranscriptsDir(),
		l.OutputsDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}
	return nil
}

// Resolve turns a root-relative path into an absolute one, rejecting any
// path that would escape the data root.
func (l Layout) Resolve(rel string) (string, error) {
	abs := filepath.Join(l.root, filepath.FromSlash(rel))
	within, err := filepath.Rel(l.root, abs)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes data root: %s", rel)
	}
	return abs, nil
}

// Rel converts an absolute path under the root into the slash-separated
// relative form stored in the database and queue payloads.
func (l Layout) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(l.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path outside data root: %s", abs)
	}
	return filepath.ToSlash(rel), nil
}

// WriteTranscriptFiles writes <basename>.txt and <basename>.srt into the
// transcripts directory and returns their root-relative paths.
func (l Layout) WriteTranscriptFiles(basename, text, srt string) (txtRel, srtRel string, err error) {
	if err := os.MkdirAll(l.TranscriptsDir(), 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create transcripts directory: %w", err)
	}

	txtPath := filepath.Join(l.TranscriptsDir(), basename+".txt")
	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write transcript text: %w", err)
	}

	srtPath := filepath.Join(l.TranscriptsDir(), basename+".srt")
	if err := os.WriteFile(srtPath, []byte(srt), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write transcript subtitles: %w", err)
	}

	return path.Join(transcriptsDir, basename+".txt"), path.Join(transcriptsDir, basename+".srt"), nil
}

// ProcessedAudioName is the deterministic artifact name for an audio job.
func ProcessedAudioName(jobID int64) string {
	return fmt.Sprintf("%d_processed.mp3", jobID)
}

// WaveformVideoName is the deterministic artifact name for a video job.
func WaveformVideoName(jobID int64) string {
	return fmt.Sprintf("%d_waveform.mp4", jobID)
}

// TranscriptBasename is the shared stem of a job's transcript files.
func TranscriptBasename(jobID int64) string {
	return fmt.Sprintf("%d_transcript", jobID)
}

// ProcessedRel returns the root-relative path of a processed artifact.
func ProcessedRel(filename string) string {
	return path.Join(processedDir, filename)
}

// UploadRel returns the root-relative path of an uploaded file.
func UploadRel(sessionID, filename string) string {
	return path.Join(uploadsDir, sessionID, filename)
}
