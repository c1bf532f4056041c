package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ArtemisAI/thePodcaster/internal/datadir"
	"github.com/ArtemisAI/thePodcaster/internal/jobs"
	"github.com/ArtemisAI/thePodcaster/internal/media"
)

// processTask drives one task through the job lifecycle: claim the row into
// PROCESSING, execute the media operation under the task timeout, and commit
// exactly one terminal state. A nil return means the delivery is consumed,
// including the case where the job was marked FAILED. A non-nil return asks
// the pool for a nack; only store write failures are requeued.
func (w *Worker) processTask(ctx context.Context, msg *taskDelivery) error {
	task := msg.Task

	w.logger.Info("Processing task",
		slog.Int64("job_id", task.JobID),
		slog.String("job_type", string(task.JobType)),
		slog.String("worker_id", w.workerID),
	)

	// The claim is an unconditional status overwrite, not a compare-and-set:
	// a redelivered task must be able to re-run a job that already reached a
	// terminal state and leave the same result behind.
	job, err := w.storage.ClaimJob(ctx, task.JobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			w.logger.Warn("Job row vanished before execution",
				slog.Int64("job_id", task.JobID),
			)
			return fmt.Errorf("failed to claim job %d: %w", task.JobID, err)
		}
		return &StoreError{Err: err}
	}

	taskCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	outputPath, execErr := w.executeTask(taskCtx, task)
	if execErr != nil {
		w.logger.Error("Task execution failed",
			slog.Int64("job_id", job.ID),
			slog.String("job_type", string(job.JobType)),
			slog.String("error", execErr.Error()),
		)

		failMsg := jobs.TruncateError("Task failed: " + execErr.Error())
		if updateErr := w.storage.MarkFailed(ctx, job.ID, failMsg); updateErr != nil {
			w.logger.Error("Failed to record FAILED state",
				slog.Int64("job_id", job.ID),
				slog.String("error", updateErr.Error()),
			)
			return &StoreError{Err: updateErr}
		}
		return nil
	}

	if updateErr := w.storage.MarkCompleted(ctx, job.ID, outputPath); updateErr != nil {
		w.logger.Error("Failed to record COMPLETED state",
			slog.Int64("job_id", job.ID),
			slog.String("error", updateErr.Error()),
		)
		return &StoreError{Err: updateErr}
	}

	w.logger.Info("Task completed",
		slog.Int64("job_id", job.ID),
		slog.String("job_type", string(job.JobType)),
		slog.String("output_file_path", outputPath),
	)

	return nil
}

// executeTask dispatches on the job type and returns the root-relative
// output path to record on success.
func (w *Worker) executeTask(ctx context.Context, task *jobs.TaskMessage) (string, error) {
	switch task.JobType {
	case jobs.TypeAudioProcessing:
		return w.runAudioProcessing(ctx, task)
	case jobs.TypeVideoGeneration:
		return w.runVideoGeneration(ctx, task)
	case jobs.TypeTranscription:
		return w.runTranscription(ctx, task)
	default:
		return "", fmt.Errorf("%w: unsupported job type %q", ErrInvalidTask, task.JobType)
	}
}

func (w *Worker) runAudioProcessing(ctx context.Context, task *jobs.TaskMessage) (string, error) {
	args := task.AudioProcessing

	inputs := make([]string, 0, len(args.InputPaths))
	for _, rel := range args.InputPaths {
		abs, err := w.layout.Resolve(rel)
		if err != nil {
			return "", err
		}
		inputs = append(inputs, abs)
	}

	outRel := datadir.ProcessedRel(args.OutputFilename)
	outAbs, err := w.layout.Resolve(outRel)
	if err != nil {
		return "", err
	}

	if err := w.audio.MergeAndNormalize(ctx, inputs, outAbs); err != nil {
		return "", err
	}

	return outRel, nil
}

func (w *Worker) runVideoGeneration(ctx context.Context, task *jobs.TaskMessage) (string, error) {
	args := task.VideoGeneration

	srcAbs, err := w.layout.Resolve(args.SourcePath)
	if err != nil {
		return "", err
	}

	outRel := datadir.ProcessedRel(args.OutputFilename)
	outAbs, err := w.layout.Resolve(outRel)
	if err != nil {
		return "", err
	}

	spec := media.WaveformSpec{
		AudioPath:       srcAbs,
		OutputPath:      outAbs,
		Resolution:      args.Resolution,
		ForegroundColor: args.ForegroundColor,
		BackgroundColor: args.BackgroundColor,
	}
	if args.BackgroundImagePath != "" {
		bgAbs, err := w.layout.Resolve(args.BackgroundImagePath)
		if err != nil {
			return "", err
		}
		spec.BackgroundImagePath = bgAbs
	}

	if err := w.video.RenderWaveform(ctx, spec); err != nil {
		return "", err
	}

	return outRel, nil
}

// runTranscription recognizes speech, writes the transcript files, and
// upserts the transcript row. The SRT path becomes the job's output.
func (w *Worker) runTranscription(ctx context.Context, task *jobs.TaskMessage) (string, error) {
	args := task.Transcription

	srcAbs, err := w.layout.Resolve(args.SourcePath)
	if err != nil {
		return "", err
	}

	res, err := w.transcriber.Transcribe(ctx, srcAbs)
	if err != nil {
		return "", err
	}

	_, srtRel, err := w.layout.WriteTranscriptFiles(args.OutputBasename, res.Text, res.SRT)
	if err != nil {
		return "", fmt.Errorf("failed to write transcript files: %w", err)
	}

	if err := w.storage.SaveTranscript(ctx, &jobs.Transcript{
		ProcessingJobID: task.JobID,
		TextContent:     res.Text,
		SRTContent:      res.SRT,
		Language:        res.Language,
	}); err != nil {
		return "", fmt.Errorf("failed to save transcript: %w", err)
	}

	return srtRel, nil
}
