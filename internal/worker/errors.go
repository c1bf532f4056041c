package worker

import "errors"

// ErrInvalidTask is returned for deliveries whose payload cannot be
// dispatched. They are dropped without requeue; redelivery cannot fix them.
var ErrInvalidTask = errors.New("invalid task message")

// StoreError wraps a failed job-state write. The delivery is requeued so a
// later attempt can reconcile the job row; task execution itself is
// idempotent.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return "job store write failed: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
