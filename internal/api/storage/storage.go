package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ArtemisAI/thePodcaster/internal/jobs"
	"github.com/ArtemisAI/thePodcaster/shared/postgresql"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

// CreateJob inserts a PENDING row and returns it with the generated id.
func (s *Storage) CreateJob(ctx context.Context, jobType jobs.Type) (*jobs.Job, error) {
	query := `
		INSERT INTO processing_jobs (job_type, status)
		VALUES ($1, $2)
		RETURNING id, job_type, status, output_file_path, error_message, created_at
	`

	var job jobs.Job
	err := s.db.QueryRowxContext(ctx, query, jobType, jobs.StatusPending).StructScan(&job)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return &job, nil
}

func (s *Storage) GetJob(ctx context.Context, jobID int64) (*jobs.Job, error) {
	query := `
		SELECT id, job_type, status, output_file_path, error_message, created_at
		FROM processing_jobs
		WHERE id = $1
	`

	var job jobs.Job
	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobs.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job %d: %w", jobID, err)
	}

	return &job, nil
}

type JobFilter struct {
	Status   string
	JobType  string
	PageSize int
	Cursor   *JobCursor
}

type JobCursor struct {
	CreatedAt time.Time
	ID        int64
}

func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]jobs.Job, error) {
	query := `
        SELECT id, job_type, status, output_file_path, error_message, created_at
        FROM processing_jobs
        WHERE 1=1
    `
	args := []interface{}{}
	argIdx := 1

	// Filters
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.JobType != "" {
		query += fmt.Sprintf(" AND job_type = $%d", argIdx)
		args = append(args, filter.JobType)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.ID)
		argIdx += 2
	}

	// Order by created_at DESC, id DESC for consistent pagination
	query += " ORDER BY created_at DESC, id DESC"

	// Fetch one extra to determine if there are more results
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var list []jobs.Job
	err := s.db.SelectContext(ctx, &list, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return list, nil
}

// ListLibrary returns every completed job that still has an artifact on
// record, newest first.
func (s *Storage) ListLibrary(ctx context.Context) ([]jobs.Job, error) {
	query := `
		SELECT id, job_type, status, output_file_path, error_message, created_at
		FROM processing_jobs
		WHERE status = $1 AND output_file_path IS NOT NULL
		ORDER BY created_at DESC, id DESC
	`

	var list []jobs.Job
	err := s.db.SelectContext(ctx, &list, query, jobs.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}

	return list, nil
}

// ClearOutputPath drops the artifact reference after the file itself has
// been deleted. The job row and its status survive.
func (s *Storage) ClearOutputPath(ctx context.Context, jobID int64) error {
	query := `
		UPDATE processing_jobs
		SET output_file_path = NULL
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, jobID)
	if err != nil {
		return fmt.Errorf("failed to clear output path for job %d: %w", jobID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return jobs.ErrJobNotFound
	}

	return nil
}

func (s *Storage) CreateAudioFile(ctx context.Context, file *jobs.AudioFile) error {
	query := `
		INSERT INTO audio_files (
			original_filename, saved_path, session_id,
			file_size, content_type
		) VALUES (
			$1, $2, $3,
			$4, $5
		)
		RETURNING id, uploaded_at
	`

	err := s.db.QueryRowxContext(
		ctx,
		query,
		file.OriginalFilename,
		file.SavedPath,
		file.SessionID,
		file.FileSize,
		file.ContentType,
	).Scan(&file.ID, &file.UploadedAt)

	if err != nil {
		return fmt.Errorf("failed to record uploaded file: %w", err)
	}

	return nil
}

// ListSessionFiles returns a session's uploads in upload order.
func (s *Storage) ListSessionFiles(ctx context.Context, sessionID string) ([]jobs.AudioFile, error) {
	query := `
		SELECT id, original_filename, saved_path, session_id, file_size, content_type, uploaded_at
		FROM audio_files
		WHERE session_id = $1
		ORDER BY id
	`

	var files []jobs.AudioFile
	err := s.db.SelectContext(ctx, &files, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session files: %w", err)
	}

	return files, nil
}

func (s *Storage) GetTranscriptByJob(ctx context.Context, jobID int64) (*jobs.Transcript, error) {
	query := `
		SELECT id, processing_job_id, text_content, srt_content, language, created_at
		FROM transcripts
		WHERE processing_job_id = $1
	`

	var transcript jobs.Transcript
	err := s.db.GetContext(ctx, &transcript, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobs.ErrTranscriptNotFound
		}
		return nil, fmt.Errorf("failed to get transcript for job %d: %w", jobID, err)
	}

	return &transcript, nil
}

func (s *Storage) CreateSuggestion(ctx context.Context, suggestion *jobs.Suggestion) error {
	query := `
		INSERT INTO llm_suggestions (
			job_id, prompt_type, model_used,
			titles, suggested_summary
		) VALUES (
			$1, $2, $3,
			$4, $5
		)
		RETURNING id, created_at
	`

	err := s.db.QueryRowxContext(
		ctx,
		query,
		suggestion.JobID,
		suggestion.PromptType,
		suggestion.ModelUsed,
		suggestion.Titles,
		suggestion.SuggestedSummary,
	).Scan(&suggestion.ID, &suggestion.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save suggestion: %w", err)
	}

	return nil
}

func (s *Storage) GetSuggestion(ctx context.Context, suggestionID int64) (*jobs.Suggestion, error) {
	query := `
		SELECT id, job_id, prompt_type, model_used, titles, suggested_summary, created_at
		FROM llm_suggestions
		WHERE id = $1
	`

	var suggestion jobs.Suggestion
	err := s.db.GetContext(ctx, &suggestion, query, suggestionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobs.ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("failed to get suggestion %d: %w", suggestionID, err)
	}

	return &suggestion, nil
}

func (s *Storage) ListSuggestionsByJob(ctx context.Context, jobID int64) ([]jobs.Suggestion, error) {
	query := `
		SELECT id, job_id, prompt_type, model_used, titles, suggested_summary, created_at
		FROM llm_suggestions
		WHERE job_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var suggestions []jobs.Suggestion
	err := s.db.SelectContext(ctx, &suggestions, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions for job %d: %w", jobID, err)
	}

	return suggestions, nil
}

// LatestSuggestionByJob returns the newest suggestion for a job, used when
// publishing an episode.
func (s *Storage) LatestSuggestionByJob(ctx context.Context, jobID int64) (*jobs.Suggestion, error) {
	query := `
		SELECT id, job_id, prompt_type, model_used, titles, suggested_summary, created_at
		FROM llm_suggestions
		WHERE job_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var suggestion jobs.Suggestion
	err := s.db.GetContext(ctx, &suggestion, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobs.ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("failed to get latest suggestion for job %d: %w", jobID, err)
	}

	return &suggestion, nil
}
