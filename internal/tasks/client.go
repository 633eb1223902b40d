package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
)

// Client submits tasks by name, either to the broker or inline.
type Client struct {
	registry *Registry
	broker   Broker
	policy   Policy
	metrics  *Metrics
	logger   logging.Logger
}

func NewClient(registry *Registry, broker Broker, policy Policy, metrics *Metrics, logger logging.Logger) *Client {
	return &Client{
		registry: registry,
		broker:   broker,
		policy:   policy,
		metrics:  metrics,
		logger:   logger,
	}
}

func (c *Client) Registry() *Registry {
	return c.registry
}

// Enqueue pushes a task onto the queue its name is bound to.
func (c *Client) Enqueue(ctx context.Context, name string, payload any) (*Task, error) {
	queue, err := c.registry.QueueOf(name)
	if err != nil {
		return nil, err
	}
	t, err := NewTask(name, queue, payload, c.policy.MaxAttempts)
	if err != nil {
		return nil, err
	}
	if err := c.broker.Push(ctx, t); err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", name, err)
	}
	c.metrics.enqueued(t)
	c.logger.Info("task enqueued",
		logging.String("task", name),
		logging.String("task_id", t.ID),
		logging.String("queue", string(queue)),
	)
	return t, nil
}

// Apply runs the task in the caller's goroutine under the same retry policy
// a worker would use and returns the handler's result.
func (c *Client) Apply(ctx context.Context, name string, payload any) (any, error) {
	e, err := c.registry.lookup(name)
	if err != nil {
		return nil, err
	}
	t, err := NewTask(name, e.queue, payload, c.policy.MaxAttempts)
	if err != nil {
		return nil, err
	}
	for {
		t.Attempt++
		result, err := run(withTask(ctx, t, c.logger), e.handler, t.Payload)
		if err == nil {
			return result, nil
		}
		if !t.canRetry(c.policy) {
			c.logger.Error("task failed permanently",
				logging.String("task", name),
				logging.Int("attempts", t.Attempt),
				logging.Error(err),
			)
			return nil, fmt.Errorf("%s failed after %d attempts: %w", name, t.Attempt, err)
		}
		delay := c.policy.Delay(t.Attempt)
		c.logger.Warn("task attempt failed, retrying",
			logging.String("task", name),
			logging.Int("attempt", t.Attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// run invokes h, turning a panic into an error.
func run(ctx context.Context, h Handler, payload json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return h(ctx, payload)
}

// Agents lists every registered task with its queue.
func (c *Client) Agents() []AgentInfo {
	names := c.registry.Names()
	out := make([]AgentInfo, 0, len(names))
	for _, n := range names {
		q, _ := c.registry.QueueOf(n)
		out = append(out, AgentInfo{Name: n, Queue: q})
	}
	return out
}

type AgentInfo struct {
	Name  string `json:"name"`
	Queue Queue  `json:"queue"`
}
