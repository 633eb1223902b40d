package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type delayedItem struct {
	at  time.Time
	raw string
}

type memoryQueue struct {
	pending    []string // oldest first
	processing map[string][]string
	delayed    []delayedItem
	failed     []string
}

// MemoryBroker is an in-process Broker for tests and single-binary runs.
type MemoryBroker struct {
	mu     sync.Mutex
	queues map[Queue]*memoryQueue
	signal chan struct{}
	now    func() time.Time
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		queues: make(map[Queue]*memoryQueue),
		signal: make(chan struct{}, 1),
		now:    time.Now,
	}
}

func (b *MemoryBroker) queue(q Queue) *memoryQueue {
	mq, ok := b.queues[q]
	if !ok {
		mq = &memoryQueue{processing: make(map[string][]string)}
		b.queues[q] = mq
	}
	return mq
}

func (b *MemoryBroker) notify() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *MemoryBroker) Push(_ context.Context, t *Task) error {
	data, err := t.encode()
	if err != nil {
		return err
	}
	b.mu.Lock()
	mq := b.queue(t.Queue)
	mq.pending = append(mq.pending, data)
	b.mu.Unlock()
	b.notify()
	return nil
}

func (b *MemoryBroker) tryPop(q Queue, workerID string) (*Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mq := b.queue(q)
	now := b.now()
	kept := mq.delayed[:0]
	for _, d := range mq.delayed {
		if d.at.After(now) {
			kept = append(kept, d)
			continue
		}
		mq.pending = append(mq.pending, d.raw)
	}
	mq.delayed = kept

	if len(mq.pending) == 0 {
		return nil, ErrQueueEmpty
	}
	raw := mq.pending[0]
	mq.pending = mq.pending[1:]
	t, err := decodeTask(raw)
	if err != nil {
		mq.failed = append(mq.failed, raw)
		return nil, err
	}
	mq.processing[workerID] = append(mq.processing[workerID], raw)
	return t, nil
}

func (b *MemoryBroker) Pop(ctx context.Context, q Queue, workerID string, timeout time.Duration) (*Task, error) {
	t, err := b.tryPop(q, workerID)
	if err != ErrQueueEmpty || timeout <= 0 {
		return t, err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return b.tryPop(q, workerID)
		case <-b.signal:
			t, err = b.tryPop(q, workerID)
			if err != ErrQueueEmpty {
				return t, err
			}
		}
	}
}

func (b *MemoryBroker) removeProcessing(mq *memoryQueue, workerID, raw string) {
	list := mq.processing[workerID]
	for i, r := range list {
		if r == raw {
			mq.processing[workerID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (b *MemoryBroker) Ack(_ context.Context, t *Task, workerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeProcessing(b.queue(t.Queue), workerID, t.raw)
	return nil
}

func (b *MemoryBroker) Retry(_ context.Context, t *Task, workerID string, at time.Time) error {
	data, err := t.encode()
	if err != nil {
		return err
	}
	b.mu.Lock()
	mq := b.queue(t.Queue)
	b.removeProcessing(mq, workerID, t.raw)
	mq.delayed = append(mq.delayed, delayedItem{at: at, raw: data})
	sort.SliceStable(mq.delayed, func(i, j int) bool { return mq.delayed[i].at.Before(mq.delayed[j].at) })
	b.mu.Unlock()
	return nil
}

func (b *MemoryBroker) Fail(_ context.Context, t *Task, workerID string) error {
	data, err := t.encode()
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	mq := b.queue(t.Queue)
	b.removeProcessing(mq, workerID, t.raw)
	mq.failed = append([]string{data}, mq.failed...)
	return nil
}

func (b *MemoryBroker) Requeue(_ context.Context, q Queue, workerID string) (int, error) {
	b.mu.Lock()
	mq := b.queue(q)
	left := mq.processing[workerID]
	delete(mq.processing, workerID)
	mq.pending = append(append([]string{}, left...), mq.pending...)
	b.mu.Unlock()
	if len(left) > 0 {
		b.notify()
	}
	return len(left), nil
}

func (b *MemoryBroker) Len(_ context.Context, q Queue) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.queue(q).pending)), nil
}

func (b *MemoryBroker) Failed(_ context.Context, q Queue) ([]*Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Task, 0, len(b.queue(q).failed))
	for _, raw := range b.queue(q).failed {
		t, err := decodeTask(raw)
		if err != nil {
			return nil, fmt.Errorf("failed list: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (b *MemoryBroker) Close() error {
	return nil
}
