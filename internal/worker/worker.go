package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ArtemisAI/thePodcaster/internal/datadir"
	"github.com/ArtemisAI/thePodcaster/internal/jobs"
	"github.com/ArtemisAI/thePodcaster/internal/media"
	"github.com/ArtemisAI/thePodcaster/internal/transcribe"
	"github.com/ArtemisAI/thePodcaster/shared/rabbitmq"
)

// JobStore is the slice of job persistence the executor needs.
type JobStore interface {
	ClaimJob(ctx context.Context, jobID int64) (*jobs.Job, error)
	MarkCompleted(ctx context.Context, jobID int64, outputPath string) error
	MarkFailed(ctx context.Context, jobID int64, errorMessage string) error
	SaveTranscript(ctx context.Context, t *jobs.Transcript) error
}

// Transcriber runs speech recognition for transcription tasks.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*transcribe.Result, error)
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Storage       JobStore
	RabbitClient  *rabbitmq.Client
	Layout        datadir.Layout
	Audio         *media.AudioProcessor
	Video         *media.VideoGenerator
	Transcriber   Transcriber
	Concurrency   int
	PrefetchCount int
	JobTimeout    time.Duration
}

// taskDelivery pairs a parsed task with its AMQP delivery for settlement.
type taskDelivery struct {
	Task     *jobs.TaskMessage
	delivery amqp.Delivery
}

// Worker consumes task messages and drives jobs through the media pipeline.
type Worker struct {
	logger        *slog.Logger
	storage       JobStore
	rabbitClient  *rabbitmq.Client
	layout        datadir.Layout
	audio         *media.AudioProcessor
	video         *media.VideoGenerator
	transcriber   Transcriber
	concurrency   int
	prefetchCount int
	jobTimeout    time.Duration
	workerID      string
	jobsChan      chan *taskDelivery
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		logger:        cfg.Logger,
		storage:       cfg.Storage,
		rabbitClient:  cfg.RabbitClient,
		layout:        cfg.Layout,
		audio:         cfg.Audio,
		video:         cfg.Video,
		transcriber:   cfg.Transcriber,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		jobTimeout:    cfg.JobTimeout,
		workerID:      fmt.Sprintf("worker-%s", uuid.NewString()),
		jobsChan:      make(chan *taskDelivery, cfg.Concurrency),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming tasks. It blocks until ctx is canceled or the
// delivery channel closes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	if err := w.layout.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to prepare data directories: %w", err)
	}

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to set up consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker, waiting for in-flight tasks.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
