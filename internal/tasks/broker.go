package tasks

import (
	"context"
	"time"
)

// Broker holds tasks between enqueue and completion. A popped task sits in
// the worker's processing list until it is acked, retried or failed, so a
// crashed worker's tasks can be requeued.
type Broker interface {
	Push(ctx context.Context, t *Task) error
	// Pop moves the oldest ready task of queue into workerID's processing
	// list. A timeout <= 0 does not block. Returns ErrQueueEmpty when
	// nothing is ready.
	Pop(ctx context.Context, queue Queue, workerID string, timeout time.Duration) (*Task, error)
	Ack(ctx context.Context, t *Task, workerID string) error
	// Retry takes t off the processing list and makes it ready again at at.
	Retry(ctx context.Context, t *Task, workerID string, at time.Time) error
	// Fail takes t off the processing list and parks it on the failed list.
	Fail(ctx context.Context, t *Task, workerID string) error
	// Requeue hands everything left on workerID's processing list back to
	// the pending list.
	Requeue(ctx context.Context, queue Queue, workerID string) (int, error)
	Len(ctx context.Context, queue Queue) (int64, error)
	Failed(ctx context.Context, queue Queue) ([]*Task, error)
	Close() error
}
