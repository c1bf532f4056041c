package jobs

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema is the full DDL for the pipeline tables. Both services apply it at
// startup so either can come up first against an empty database.
const Schema = `
CREATE TABLE IF NOT EXISTS processing_jobs (
	id               BIGSERIAL PRIMARY KEY,
	job_type         TEXT        NOT NULL DEFAULT 'unknown',
	status           TEXT        NOT NULL DEFAULT 'PENDING',
	output_file_path TEXT,
	error_message    TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_processing_jobs_status
	ON processing_jobs (status);
CREATE INDEX IF NOT EXISTS idx_processing_jobs_created_at
	ON processing_jobs (created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS transcripts (
	id                BIGSERIAL PRIMARY KEY,
	processing_job_id BIGINT      NOT NULL UNIQUE REFERENCES processing_jobs (id) ON DELETE CASCADE,
	text_content      TEXT        NOT NULL DEFAULT '',
	srt_content       TEXT        NOT NULL DEFAULT '',
	language          VARCHAR(50) NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audio_files (
	id                BIGSERIAL PRIMARY KEY,
	original_filename VARCHAR(255)  NOT NULL,
	saved_path        VARCHAR(1024) NOT NULL,
	session_id        VARCHAR(36)   NOT NULL,
	file_size         BIGINT        NOT NULL DEFAULT 0,
	content_type      VARCHAR(255)  NOT NULL DEFAULT '',
	uploaded_at       TIMESTAMPTZ   NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_audio_files_session_id
	ON audio_files (session_id);

CREATE TABLE IF NOT EXISTS llm_suggestions (
	id                BIGSERIAL PRIMARY KEY,
	job_id            BIGINT REFERENCES processing_jobs (id) ON DELETE SET NULL,
	prompt_type       VARCHAR(100) NOT NULL DEFAULT 'title_summary',
	model_used        VARCHAR(100) NOT NULL DEFAULT '',
	titles            TEXT         NOT NULL DEFAULT '[]',
	suggested_summary TEXT         NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_llm_suggestions_job_id
	ON llm_suggestions (job_id);
`

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply database schema: %w", err)
	}
	return nil
}
