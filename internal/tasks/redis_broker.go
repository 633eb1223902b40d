package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/redis/go-redis/v9"
)

const (
	pendingQueue    = "pending"
	failedQueue     = "failed"
	delayedQueue    = "delayed"
	processingQueue = "processing:"
)

func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error pinging the redis : %w", err)
	}
	return client, nil
}

// RedisBroker keeps one pending list, one delayed sorted set (scored by
// ready time in milliseconds), one failed list and a processing list per
// worker for every queue.
type RedisBroker struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisBroker(client *redis.Client, prefix string) *RedisBroker {
	if prefix == "" {
		prefix = "seo_audit"
	}
	return &RedisBroker{client: client, prefix: prefix, now: time.Now}
}

func (b *RedisBroker) key(q Queue, name string) string {
	return fmt.Sprintf("%s:queue:%s:%s", b.prefix, q, name)
}

func (b *RedisBroker) Push(ctx context.Context, t *Task) error {
	data, err := t.encode()
	if err != nil {
		return err
	}
	if err := b.client.LPush(ctx, b.key(t.Queue, pendingQueue), data).Err(); err != nil {
		return fmt.Errorf("failed to push task to pending queue: %w", err)
	}
	return nil
}

// promote moves due delayed tasks onto the pending list. ZRem decides which
// caller wins a task when several workers promote at once.
func (b *RedisBroker) promote(ctx context.Context, q Queue) error {
	delayedKey := b.key(q, delayedQueue)
	due, err := b.client.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(b.now().UnixMilli(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read delayed queue: %w", err)
	}
	for _, raw := range due {
		removed, err := b.client.ZRem(ctx, delayedKey, raw).Result()
		if err != nil {
			return fmt.Errorf("failed to claim delayed task: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := b.client.LPush(ctx, b.key(q, pendingQueue), raw).Err(); err != nil {
			return fmt.Errorf("failed to promote delayed task: %w", err)
		}
	}
	return nil
}

func (b *RedisBroker) Pop(ctx context.Context, q Queue, workerID string, timeout time.Duration) (*Task, error) {
	if err := b.promote(ctx, q); err != nil {
		return nil, err
	}
	src, dst := b.key(q, pendingQueue), b.key(q, processingQueue+workerID)
	var (
		raw string
		err error
	)
	if timeout <= 0 {
		raw, err = b.client.LMove(ctx, src, dst, "RIGHT", "LEFT").Result()
	} else {
		raw, err = b.client.BLMove(ctx, src, dst, "RIGHT", "LEFT", timeout).Result()
	}
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop task: %w", err)
	}
	t, err := decodeTask(raw)
	if err != nil {
		// unreadable entries would otherwise block the processing list forever.
		// Push before removing so a failed push leaves the entry in place.
		if perr := b.client.LPush(ctx, b.key(q, failedQueue), raw).Err(); perr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to park undecodable task: %w", perr))
		}
		if rerr := b.client.LRem(ctx, dst, 1, raw).Err(); rerr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to remove undecodable task from processing queue: %w", rerr))
		}
		return nil, err
	}
	return t, nil
}

func (b *RedisBroker) Ack(ctx context.Context, t *Task, workerID string) error {
	if err := b.client.LRem(ctx, b.key(t.Queue, processingQueue+workerID), 1, t.raw).Err(); err != nil {
		return fmt.Errorf("failed to remove task from processing queue: %w", err)
	}
	return nil
}

func (b *RedisBroker) Retry(ctx context.Context, t *Task, workerID string, at time.Time) error {
	data, err := t.encode()
	if err != nil {
		return err
	}
	pipe := b.client.TxPipeline()
	pipe.LRem(ctx, b.key(t.Queue, processingQueue+workerID), 1, t.raw)
	pipe.ZAdd(ctx, b.key(t.Queue, delayedQueue), redis.Z{Score: float64(at.UnixMilli()), Member: data})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	return nil
}

func (b *RedisBroker) Fail(ctx context.Context, t *Task, workerID string) error {
	data, err := t.encode()
	if err != nil {
		return err
	}
	pipe := b.client.TxPipeline()
	pipe.LRem(ctx, b.key(t.Queue, processingQueue+workerID), 1, t.raw)
	pipe.LPush(ctx, b.key(t.Queue, failedQueue), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to move task to failed queue: %w", err)
	}
	return nil
}

func (b *RedisBroker) Requeue(ctx context.Context, q Queue, workerID string) (int, error) {
	src, dst := b.key(q, processingQueue+workerID), b.key(q, pendingQueue)
	moved := 0
	for {
		err := b.client.LMove(ctx, src, dst, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to requeue processing tasks: %w", err)
		}
		moved++
	}
}

func (b *RedisBroker) Len(ctx context.Context, q Queue) (int64, error) {
	n, err := b.client.LLen(ctx, b.key(q, pendingQueue)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get the pending queue size: %w", err)
	}
	return n, nil
}

func (b *RedisBroker) Failed(ctx context.Context, q Queue) ([]*Task, error) {
	items, err := b.client.LRange(ctx, b.key(q, failedQueue), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read failed queue: %w", err)
	}
	out := make([]*Task, 0, len(items))
	for _, raw := range items {
		t, err := decodeTask(raw)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
