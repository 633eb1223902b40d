package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyDelay(t *testing.T) {
	p := Policy{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 2}
	assert.Equal(t, time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 3*time.Second, p.Delay(3))
	assert.True(t, p.ShouldRetry(2))
	assert.False(t, p.ShouldRetry(3))
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(&config.TaskConfig{MaxAttempts: 5})
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.Equal(t, 10*time.Minute, p.MaxDelay)
}

func TestRegistryBindsOneQueuePerName(t *testing.T) {
	r := NewRegistry()
	h := func(context.Context, json.RawMessage) (any, error) { return nil, nil }
	require.NoError(t, r.Register("a", QueueAudit, h))
	assert.Error(t, r.Register("a", QueueContent, h))

	q, err := r.QueueOf("a")
	require.NoError(t, err)
	assert.Equal(t, QueueAudit, q)

	_, err = r.QueueOf("missing")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestNewTask(t *testing.T) {
	task, err := NewTask("x", QueueDiscovery, map[string]string{"domain": "example.com"}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, 1, task.MaxAttempts)
	assert.Equal(t, StatusEnqueued, task.Status)
	assert.JSONEq(t, `{"domain":"example.com"}`, string(task.Payload))

	var p DomainPayload
	require.NoError(t, Decode(task.Payload, &p))
	assert.Equal(t, "example.com", p.Domain)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWorker(b *MemoryBroker, r *Registry, q Queue, c *clock) *Worker {
	w := NewWorker("w1", q, b, r, DefaultPolicy(), nil, time.Millisecond, logging.NewNop())
	b.now = c.now
	w.now = c.now
	return w
}

func TestWorkerSucceeds(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	var got DomainPayload
	r.MustRegister("audit.x", QueueAudit, func(ctx context.Context, p json.RawMessage) (any, error) {
		task, ok := FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, 1, task.Attempt)
		return "ok", Decode(p, &got)
	})
	b := NewMemoryBroker()
	client := NewClient(r, b, DefaultPolicy(), nil, logging.NewNop())
	_, err := client.Enqueue(ctx, "audit.x", DomainPayload{Domain: "example.com"})
	require.NoError(t, err)

	w := newTestWorker(b, r, QueueAudit, &clock{t: time.Unix(1000, 0)})
	processed, err := w.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, "example.com", got.Domain)
	assert.Empty(t, b.queue(QueueAudit).processing["w1"])

	processed, err = w.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestWorkerRetriesThenFails(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	calls := 0
	r.MustRegister("content.flaky", QueueContent, func(context.Context, json.RawMessage) (any, error) {
		calls++
		return nil, errors.New("upstream down")
	})
	b := NewMemoryBroker()
	c := &clock{t: time.Unix(1000, 0)}
	w := newTestWorker(b, r, QueueContent, c)
	client := NewClient(r, b, DefaultPolicy(), nil, logging.NewNop())
	_, err := client.Enqueue(ctx, "content.flaky", nil)
	require.NoError(t, err)

	processed, err := w.ProcessOne(ctx)
	require.NoError(t, err)
	require.True(t, processed)

	// backoff not elapsed yet
	processed, err = w.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, processed)

	c.advance(time.Second)
	processed, err = w.ProcessOne(ctx)
	require.NoError(t, err)
	require.True(t, processed)

	c.advance(2 * time.Second)
	processed, err = w.ProcessOne(ctx)
	require.NoError(t, err)
	require.True(t, processed)

	assert.Equal(t, 3, calls)
	failed, err := b.Failed(ctx, QueueContent)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, StatusFailed, failed[0].Status)
	assert.Equal(t, 3, failed[0].Attempt)
	assert.Equal(t, "upstream down", failed[0].LastError)

	c.advance(time.Hour)
	processed, _ = w.ProcessOne(ctx)
	assert.False(t, processed)
}

func TestWorkerHonoursTaskAttemptBudget(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	calls := 0
	r.MustRegister("content.flaky", QueueContent, func(context.Context, json.RawMessage) (any, error) {
		calls++
		return nil, errors.New("upstream down")
	})
	b := NewMemoryBroker()
	c := &clock{t: time.Unix(1000, 0)}
	w := newTestWorker(b, r, QueueContent, c)

	single := DefaultPolicy()
	single.MaxAttempts = 1
	_, err := NewClient(r, b, single, nil, logging.NewNop()).Enqueue(ctx, "content.flaky", nil)
	require.NoError(t, err)

	processed, err := w.ProcessOne(ctx)
	require.NoError(t, err)
	require.True(t, processed)
	assert.Equal(t, 1, calls)
	failed, err := b.Failed(ctx, QueueContent)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Attempt)
}

func TestTaskCanRetryFallsBackToPolicy(t *testing.T) {
	task := &Task{Attempt: 2}
	assert.True(t, task.canRetry(DefaultPolicy()))
	task.Attempt = 3
	assert.False(t, task.canRetry(DefaultPolicy()))

	task = &Task{Attempt: 3, MaxAttempts: 5}
	assert.True(t, task.canRetry(DefaultPolicy()))
}

func TestWorkerRecoversPanics(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.MustRegister("backlink.panic", QueueBacklink, func(context.Context, json.RawMessage) (any, error) {
		panic("boom")
	})
	b := NewMemoryBroker()
	client := NewClient(r, b, Policy{MaxAttempts: 1}, nil, logging.NewNop())
	_, err := client.Enqueue(ctx, "backlink.panic", nil)
	require.NoError(t, err)

	w := newTestWorker(b, r, QueueBacklink, &clock{t: time.Unix(1000, 0)})
	w.policy = Policy{MaxAttempts: 1}
	_, err = w.ProcessOne(ctx)
	require.NoError(t, err)

	failed, _ := b.Failed(ctx, QueueBacklink)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].LastError, "boom")
}

func TestWorkerUnknownTaskFails(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	task, err := NewTask("ghost", QueueAudit, nil, 3)
	require.NoError(t, err)
	require.NoError(t, b.Push(ctx, task))

	w := newTestWorker(b, NewRegistry(), QueueAudit, &clock{t: time.Unix(1000, 0)})
	processed, err := w.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)
	failed, _ := b.Failed(ctx, QueueAudit)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].LastError, "unknown task")
}

func TestWorkerStartStop(t *testing.T) {
	r := NewRegistry()
	done := make(chan struct{})
	r.MustRegister("discovery.ping", QueueDiscovery, func(context.Context, json.RawMessage) (any, error) {
		close(done)
		return nil, nil
	})
	b := NewMemoryBroker()
	client := NewClient(r, b, DefaultPolicy(), nil, logging.NewNop())
	_, err := client.Enqueue(context.Background(), "discovery.ping", nil)
	require.NoError(t, err)

	w := NewWorker("w1", QueueDiscovery, b, r, DefaultPolicy(), nil, 10*time.Millisecond, logging.NewNop())
	stopped := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(stopped)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not processed")
	}
	w.Stop()
	w.Stop()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestClientApplyRetries(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.MustRegister("content.sync", QueueContent, func(context.Context, json.RawMessage) (any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return "done", nil
	})
	policy := Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	client := NewClient(r, NewMemoryBroker(), policy, nil, logging.NewNop())

	got, err := client.Apply(context.Background(), "content.sync", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, 3, calls)

	calls = -10
	_, err = client.Apply(context.Background(), "content.sync", nil)
	assert.ErrorContains(t, err, "failed after 3 attempts")

	_, err = client.Apply(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestMemoryBrokerRequeue(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	for _, name := range []string{"first", "second"} {
		task, err := NewTask(name, QueueAudit, nil, 3)
		require.NoError(t, err)
		require.NoError(t, b.Push(ctx, task))
	}
	_, err := b.Pop(ctx, QueueAudit, "w", 0)
	require.NoError(t, err)

	n, err := b.Requeue(ctx, QueueAudit, "w")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	next, err := b.Pop(ctx, QueueAudit, "w", 0)
	require.NoError(t, err)
	assert.Equal(t, "first", next.Name)
}

func TestMemoryBrokerPopWaits(t *testing.T) {
	b := NewMemoryBroker()
	go func() {
		time.Sleep(20 * time.Millisecond)
		task, _ := NewTask("late", QueueAudit, nil, 1)
		_ = b.Push(context.Background(), task)
	}()
	task, err := b.Pop(context.Background(), QueueAudit, "w", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "late", task.Name)
}

func TestMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := NewRegistry()
	r.MustRegister("audit.m", QueueAudit, func(context.Context, json.RawMessage) (any, error) { return nil, nil })
	b := NewMemoryBroker()
	client := NewClient(r, b, DefaultPolicy(), m, logging.NewNop())
	_, err := client.Enqueue(context.Background(), "audit.m", nil)
	require.NoError(t, err)

	w := NewWorker("w1", QueueAudit, b, r, DefaultPolicy(), m, time.Millisecond, logging.NewNop())
	_, err = w.ProcessOne(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Enqueued.WithLabelValues("audit.m", "audit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Processed.WithLabelValues("audit.m", "succeeded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Running))
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(NewClient(NewRegistry(), NewMemoryBroker(), DefaultPolicy(), nil, logging.NewNop()), logging.NewNop())
	assert.Error(t, s.Every(context.Background(), "not a cron spec", TaskContentRefresh, nil))
	require.NoError(t, s.Every(context.Background(), DefaultRefreshSpec, TaskContentRefresh, nil))
	s.Start()
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestSchedulerEnqueuesOnTick(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(TaskContentRefresh, QueueContent, func(context.Context, json.RawMessage) (any, error) { return nil, nil })
	b := NewMemoryBroker()
	s := NewScheduler(NewClient(r, b, DefaultPolicy(), nil, logging.NewNop()), logging.NewNop())
	require.NoError(t, s.Every(context.Background(), "@every 1s", TaskContentRefresh, RefreshPayload{}))
	s.Start()
	defer s.Stop()

	task, err := b.Pop(context.Background(), QueueContent, "w", 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, TaskContentRefresh, task.Name)
}
