package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ArtemisAI/thePodcaster/internal/jobs"
)

type nackCall struct {
	tag     uint64
	requeue bool
}

type fakeAcknowledger struct {
	mu    sync.Mutex
	acks  []uint64
	nacks []nackCall
}

func (f *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, tag)
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacks = append(f.nacks, nackCall{tag: tag, requeue: requeue})
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func dispatcherWorker() *Worker {
	return NewWorker(&Config{
		Logger:        discardLogger(),
		Concurrency:   1,
		PrefetchCount: 1,
		JobTimeout:    time.Minute,
	})
}

func delivery(t *testing.T, ack *fakeAcknowledger, tag uint64, task *jobs.TaskMessage) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(task)
	require.NoError(t, err)
	return amqp.Delivery{Body: body, DeliveryTag: tag, Acknowledger: ack}
}

func TestStartMessageDispatcher(t *testing.T) {
	t.Run("valid task reaches the pool", func(t *testing.T) {
		w := dispatcherWorker()
		ack := &fakeAcknowledger{}
		deliveries := make(chan amqp.Delivery, 1)
		deliveries <- delivery(t, ack, 3, &jobs.TaskMessage{
			JobID:   42,
			JobType: jobs.TypeAudioProcessing,
			AudioProcessing: &jobs.AudioProcessingArgs{
				InputPaths:     []string{"uploads/sess/main.mp3"},
				OutputFilename: "42_processed.mp3",
			},
		})
		close(deliveries)

		w.startMessageDispatcher(context.Background(), deliveries)

		require.Len(t, w.jobsChan, 1)
		msg := <-w.jobsChan
		assert.Equal(t, int64(42), msg.Task.JobID)
		assert.Equal(t, uint64(3), msg.delivery.DeliveryTag)
		assert.Empty(t, ack.nacks)
	})

	t.Run("malformed payload is nacked without requeue", func(t *testing.T) {
		w := dispatcherWorker()
		ack := &fakeAcknowledger{}
		deliveries := make(chan amqp.Delivery, 1)
		deliveries <- amqp.Delivery{Body: []byte("{not json"), DeliveryTag: 4, Acknowledger: ack}
		close(deliveries)

		w.startMessageDispatcher(context.Background(), deliveries)

		assert.Empty(t, w.jobsChan)
		require.Len(t, ack.nacks, 1)
		assert.Equal(t, nackCall{tag: 4, requeue: false}, ack.nacks[0])
	})

	t.Run("task missing its args is nacked without requeue", func(t *testing.T) {
		w := dispatcherWorker()
		ack := &fakeAcknowledger{}
		deliveries := make(chan amqp.Delivery, 1)
		deliveries <- delivery(t, ack, 5, &jobs.TaskMessage{
			JobID:   5,
			JobType: jobs.TypeTranscription,
		})
		close(deliveries)

		w.startMessageDispatcher(context.Background(), deliveries)

		assert.Empty(t, w.jobsChan)
		require.Len(t, ack.nacks, 1)
		assert.Equal(t, nackCall{tag: 5, requeue: false}, ack.nacks[0])
	})

	t.Run("unknown job type is dispatched so the executor can fail the row", func(t *testing.T) {
		w := dispatcherWorker()
		ack := &fakeAcknowledger{}
		deliveries := make(chan amqp.Delivery, 1)
		deliveries <- delivery(t, ack, 6, &jobs.TaskMessage{JobID: 6, JobType: jobs.TypeUnknown})
		close(deliveries)

		w.startMessageDispatcher(context.Background(), deliveries)

		require.Len(t, w.jobsChan, 1)
		msg := <-w.jobsChan
		assert.Equal(t, jobs.TypeUnknown, msg.Task.JobType)
		assert.Empty(t, ack.nacks)
	})

	t.Run("context cancel stops the dispatcher", func(t *testing.T) {
		w := dispatcherWorker()
		ctx, cancel := context.WithCancel(context.Background())
		deliveries := make(chan amqp.Delivery)

		done := make(chan struct{})
		go func() {
			w.startMessageDispatcher(ctx, deliveries)
			close(done)
		}()

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("dispatcher did not stop after context cancel")
		}
	})
}

func TestSettleDelivery(t *testing.T) {
	mk := func(ack *fakeAcknowledger) *taskDelivery {
		return &taskDelivery{
			Task:     &jobs.TaskMessage{JobID: 9, JobType: jobs.TypeAudioProcessing},
			delivery: amqp.Delivery{DeliveryTag: 21, Acknowledger: ack},
		}
	}
	w := &Worker{logger: discardLogger()}

	t.Run("nil error acks the delivery", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		w.settleDelivery("w-0", mk(ack), nil)

		assert.Equal(t, []uint64{21}, ack.acks)
		assert.Empty(t, ack.nacks)
	})

	t.Run("store failure nacks with requeue", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		w.settleDelivery("w-0", mk(ack), &StoreError{Err: errors.New("connection refused")})

		assert.Empty(t, ack.acks)
		assert.Equal(t, []nackCall{{tag: 21, requeue: true}}, ack.nacks)
	})

	t.Run("vanished job nacks without requeue", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		w.settleDelivery("w-0", mk(ack), fmt.Errorf("failed to claim job 9: %w", jobs.ErrJobNotFound))

		assert.Empty(t, ack.acks)
		assert.Equal(t, []nackCall{{tag: 21, requeue: false}}, ack.nacks)
	})
}
