// Package tasks runs named units of work through per-capability queues with
// bounded retries, a periodic trigger and the agent handlers behind them.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/google/uuid"
)

type Queue string

const (
	QueueDiscovery Queue = "discovery"
	QueueAudit     Queue = "audit"
	QueueContent   Queue = "content"
	QueueBacklink  Queue = "backlink"
)

// Queues lists every queue a worker pool serves.
var Queues = []Queue{QueueDiscovery, QueueAudit, QueueContent, QueueBacklink}

type Status string

const (
	StatusEnqueued  Status = "enqueued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusRetrying  Status = "retrying"
	StatusFailed    Status = "failed"
)

var (
	ErrQueueEmpty  = errors.New("queue is empty")
	ErrUnknownTask = errors.New("unknown task")
)

// Handler runs one attempt of a task. The result is returned to synchronous
// callers and logged for queued ones.
type Handler func(ctx context.Context, payload json.RawMessage) (any, error)

type Task struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Queue       Queue           `json:"queue"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"max_attempts"`
	Status      Status          `json:"status"`
	LastError   string          `json:"last_error,omitempty"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`

	// raw is the encoded form the broker handed out, used to remove the
	// exact entry from a processing list.
	raw string
}

func NewTask(name string, queue Queue, payload any, maxAttempts int) (*Task, error) {
	var raw json.RawMessage
	switch p := payload.(type) {
	case nil:
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload for %s: %w", name, err)
		}
		raw = b
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Task{
		ID:          uuid.NewString(),
		Name:        name,
		Queue:       queue,
		Payload:     raw,
		MaxAttempts: maxAttempts,
		Status:      StatusEnqueued,
		EnqueuedAt:  time.Now().UTC(),
	}, nil
}

// canRetry uses the attempt budget the task was enqueued with, falling back
// to p for tasks that carry none.
func (t *Task) canRetry(p Policy) bool {
	if t.MaxAttempts > 0 {
		return t.Attempt < t.MaxAttempts
	}
	return p.ShouldRetry(t.Attempt)
}

func (t *Task) encode() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshal task %s: %w", t.ID, err)
	}
	return string(b), nil
}

func decodeTask(raw string) (*Task, error) {
	var t Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("unmarshal task: %w", err)
	}
	t.raw = raw
	return &t, nil
}

// Decode unmarshals a task payload into out.
func Decode(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

type taskKey struct{}

// withTask attaches t and a logger scoped to it; handlers pick the logger up
// with logging.FromContext.
func withTask(ctx context.Context, t *Task, logger logging.Logger) context.Context {
	if logger != nil {
		ctx = logging.WithContext(ctx, logger.With(
			logging.String("task", t.Name),
			logging.String("task_id", t.ID),
			logging.Int("attempt", t.Attempt),
		))
	}
	return context.WithValue(ctx, taskKey{}, t)
}

// FromContext returns the task a handler is running for, if any.
func FromContext(ctx context.Context) (*Task, bool) {
	t, ok := ctx.Value(taskKey{}).(*Task)
	return t, ok
}
