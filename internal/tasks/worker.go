package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
)

const defaultPollInterval = 2 * time.Second

type Worker struct {
	ID           string
	queue        Queue
	broker       Broker
	registry     *Registry
	policy       Policy
	metrics      *Metrics
	pollInterval time.Duration
	stopChan     chan struct{}
	stopOnce     sync.Once
	logger       logging.Logger
	now          func() time.Time
}

func NewWorker(id string, queue Queue, broker Broker, registry *Registry, policy Policy, metrics *Metrics, pollInterval time.Duration, logger logging.Logger) *Worker {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Worker{
		ID:           id,
		queue:        queue,
		broker:       broker,
		registry:     registry,
		policy:       policy,
		metrics:      metrics,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		logger:       logger.With(logging.String("worker", id), logging.String("queue", string(queue))),
		now:          time.Now,
	}
}

// ProcessOne pops and runs a single task without blocking. It reports false
// when the queue had nothing ready.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	return w.process(ctx, 0)
}

func (w *Worker) process(ctx context.Context, wait time.Duration) (bool, error) {
	t, err := w.broker.Pop(ctx, w.queue, w.ID, wait)
	if errors.Is(err, ErrQueueEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	e, err := w.registry.lookup(t.Name)
	if err != nil {
		t.Status = StatusFailed
		t.LastError = err.Error()
		w.logger.Error("no handler for task", logging.String("task", t.Name), logging.String("task_id", t.ID))
		return true, w.broker.Fail(ctx, t, w.ID)
	}

	t.Attempt++
	t.Status = StatusRunning
	w.metrics.started()
	start := w.now()
	result, runErr := run(withTask(ctx, t, w.logger), e.handler, t.Payload)
	took := w.now().Sub(start)

	if runErr == nil {
		t.Status = StatusSucceeded
		w.metrics.finished(t.Name, StatusSucceeded, took)
		w.logger.Info("task succeeded",
			logging.String("task", t.Name),
			logging.String("task_id", t.ID),
			logging.Int("attempt", t.Attempt),
			logging.Any("result", result),
		)
		return true, w.broker.Ack(ctx, t, w.ID)
	}

	t.LastError = runErr.Error()
	if t.canRetry(w.policy) {
		t.Status = StatusRetrying
		delay := w.policy.Delay(t.Attempt)
		w.metrics.finished(t.Name, StatusRetrying, took)
		w.logger.Warn("task attempt failed, retrying",
			logging.String("task", t.Name),
			logging.String("task_id", t.ID),
			logging.Int("attempt", t.Attempt),
			logging.Duration("delay", delay),
			logging.Error(runErr),
		)
		return true, w.broker.Retry(ctx, t, w.ID, w.now().Add(delay))
	}

	t.Status = StatusFailed
	w.metrics.finished(t.Name, StatusFailed, took)
	w.logger.Error("task failed permanently",
		logging.String("task", t.Name),
		logging.String("task_id", t.ID),
		logging.Int("attempts", t.Attempt),
		logging.Error(runErr),
	)
	return true, w.broker.Fail(ctx, t, w.ID)
}

// Start requeues anything this worker left in flight, then processes tasks
// until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("worker starting")
	if n, err := w.broker.Requeue(ctx, w.queue, w.ID); err != nil {
		w.logger.Warn("failed to requeue in-flight tasks", logging.Error(err))
	} else if n > 0 {
		w.logger.Info("requeued in-flight tasks", logging.Int("count", n))
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("context cancelled, shutting down")
			return
		case <-w.stopChan:
			w.logger.Info("stop signal received, shutting down")
			return
		default:
		}

		processed, err := w.process(ctx, w.pollInterval)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to process task", logging.Error(err))
		}
		if processed {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("sending stop signal")
		close(w.stopChan)
	})
}
