package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ArtemisAI/thePodcaster/internal/jobs"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine. Each
// loop runs one task at a time for its full duration.
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Info("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				w.logger.Info("Worker goroutine stopping - jobsChan closed",
					slog.String("worker_name", workerName),
				)
				return
			}

			w.logger.Info("Worker received task",
				slog.String("worker_name", workerName),
				slog.Int64("job_id", msg.Task.JobID),
				slog.Uint64("delivery_tag", msg.delivery.DeliveryTag),
			)

			err := w.processTask(ctx, msg)
			w.settleDelivery(workerName, msg, err)
		}
	}
}

// settleDelivery acks or nacks one delivery. A nil error means the task is
// consumed, including the case where the job was marked FAILED; FAILED is
// terminal and must not be redelivered.
func (w *Worker) settleDelivery(workerName string, msg *taskDelivery, err error) {
	if err == nil {
		if ackErr := msg.delivery.Ack(false); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("worker_name", workerName),
				slog.Int64("job_id", msg.Task.JobID),
				slog.String("error", ackErr.Error()),
			)
		}
		return
	}

	requeue := w.shouldRequeueTask(err)
	w.logger.Error("Task processing failed",
		slog.String("worker_name", workerName),
		slog.Int64("job_id", msg.Task.JobID),
		slog.Bool("requeue", requeue),
		slog.String("error", err.Error()),
	)

	if nackErr := msg.delivery.Nack(false, requeue); nackErr != nil {
		w.logger.Error("Failed to NACK message",
			slog.String("worker_name", workerName),
			slog.Int64("job_id", msg.Task.JobID),
			slog.String("error", nackErr.Error()),
		)
	}
}

// shouldRequeueTask determines if a task should be redelivered based on the
// error type.
func (w *Worker) shouldRequeueTask(err error) bool {
	// A vanished job row will never reappear.
	if errors.Is(err, jobs.ErrJobNotFound) {
		return false
	}

	// Structurally broken tasks cannot be fixed by redelivery.
	if errors.Is(err, ErrInvalidTask) {
		return false
	}

	// A failed state write is the one transient case: the work is done or
	// safely repeatable, only the row could not be updated.
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return true
	}

	return false
}
