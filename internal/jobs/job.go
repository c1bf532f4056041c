package jobs

import (
	"encoding/json"
	"time"
)

// Type identifies the kind of media work a job performs.
type Type string

const (
	TypeAudioProcessing Type = "audio_processing"
	TypeVideoGeneration Type = "video_generation"
	TypeTranscription   Type = "transcription"

	// TypeUnknown is the schema default; no task is ever submitted with it.
	TypeUnknown Type = "unknown"
)

// Status is the lifecycle state of a job. COMPLETED and FAILED are terminal.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Job is one row of the processing_jobs table.
// OutputFilePath is set only on COMPLETED jobs and holds a path relative to
// the data root; ErrorMessage is set only on FAILED jobs.
type Job struct {
	ID             int64     `db:"id"`
	JobType        Type      `db:"job_type"`
	Status         Status    `db:"status"`
	OutputFilePath *string   `db:"output_file_path"`
	ErrorMessage   *string   `db:"error_message"`
	CreatedAt      time.Time `db:"created_at"`
}

// Transcript holds the text artifacts produced by a transcription job.
// Exactly one row exists per transcription job.
type Transcript struct {
	ID              int64     `db:"id"`
	ProcessingJobID int64     `db:"processing_job_id"`
	TextContent     string    `db:"text_content"`
	SRTContent      string    `db:"srt_content"`
	Language        string    `db:"language"`
	CreatedAt       time.Time `db:"created_at"`
}

// AudioFile records one uploaded file within an upload session.
type AudioFile struct {
	ID               int64     `db:"id"`
	OriginalFilename string    `db:"original_filename"`
	SavedPath        string    `db:"saved_path"` // relative to the data root
	SessionID        string    `db:"session_id"`
	FileSize         int64     `db:"file_size"`
	ContentType      string    `db:"content_type"`
	UploadedAt       time.Time `db:"uploaded_at"`
}

// Suggestion is an LLM-generated set of episode titles plus a summary.
// Titles is stored as a JSON-encoded string array.
type Suggestion struct {
	ID               int64     `db:"id"`
	JobID            *int64    `db:"job_id"`
	PromptType       string    `db:"prompt_type"`
	ModelUsed        string    `db:"model_used"`
	Titles           string    `db:"titles"`
	SuggestedSummary string    `db:"suggested_summary"`
	CreatedAt        time.Time `db:"created_at"`
}

// TitleList decodes the stored titles array. A malformed column yields nil.
func (s *Suggestion) TitleList() []string {
	var titles []string
	if err := json.Unmarshal([]byte(s.Titles), &titles); err != nil {
		return nil
	}
	return titles
}
