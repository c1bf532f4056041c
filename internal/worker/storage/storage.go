package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/ArtemisAI/thePodcaster/internal/jobs"
)

// Storage handles job-state and transcript writes for the worker service.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// ClaimJob moves a job to PROCESSING and returns its row. The update is
// unconditional so a redelivered task can re-run a job that already reached
// a terminal state.
func (s *Storage) ClaimJob(ctx context.Context, jobID int64) (*jobs.Job, error) {
	query := `
		UPDATE processing_jobs
		SET status = $1
		WHERE id = $2
		RETURNING id, job_type, status, output_file_path, error_message, created_at
	`

	var job jobs.Job
	err := s.db.QueryRowxContext(ctx, query, jobs.StatusProcessing, jobID).StructScan(&job)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Failed to claim job - row not found",
				slog.Int64("job_id", jobID),
			)
			return nil, jobs.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	s.logger.Info("Job claimed",
		slog.Int64("job_id", job.ID),
		slog.String("job_type", string(job.JobType)),
	)

	return &job, nil
}

// MarkCompleted records the terminal success state: output path set, error
// message cleared.
func (s *Storage) MarkCompleted(ctx context.Context, jobID int64, outputPath string) error {
	query := `
		UPDATE processing_jobs
		SET status = $1, output_file_path = $2, error_message = NULL
		WHERE id = $3
	`

	if _, err := s.db.ExecContext(ctx, query, jobs.StatusCompleted, outputPath, jobID); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	s.logger.Info("Job status updated",
		slog.Int64("job_id", jobID),
		slog.String("status", string(jobs.StatusCompleted)),
		slog.String("output_file_path", outputPath),
	)

	return nil
}

// MarkFailed records the terminal failure state. The output path is left
// untouched.
func (s *Storage) MarkFailed(ctx context.Context, jobID int64, errorMessage string) error {
	query := `
		UPDATE processing_jobs
		SET status = $1, error_message = $2
		WHERE id = $3
	`

	if _, err := s.db.ExecContext(ctx, query, jobs.StatusFailed, errorMessage, jobID); err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}

	s.logger.Info("Job status updated",
		slog.Int64("job_id", jobID),
		slog.String("status", string(jobs.StatusFailed)),
	)

	return nil
}

// SaveTranscript upserts the transcript row for a job. At-least-once
// delivery may run a transcription twice; the second run replaces the row
// instead of accumulating duplicates.
func (s *Storage) SaveTranscript(ctx context.Context, t *jobs.Transcript) error {
	query := `
		INSERT INTO transcripts (processing_job_id, text_content, srt_content, language)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (processing_job_id) DO UPDATE
		SET text_content = EXCLUDED.text_content,
		    srt_content  = EXCLUDED.srt_content,
		    language     = EXCLUDED.language
	`

	if _, err := s.db.ExecContext(ctx, query, t.ProcessingJobID, t.TextContent, t.SRTContent, t.Language); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}

	s.logger.Info("Transcript saved",
		slog.Int64("job_id", t.ProcessingJobID),
		slog.String("language", t.Language),
	)

	return nil
}
