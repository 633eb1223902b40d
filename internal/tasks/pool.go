package tasks

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
)

// Pool runs a fixed number of workers per queue.
type Pool struct {
	broker       Broker
	registry     *Registry
	policy       Policy
	metrics      *Metrics
	concurrency  map[string]int
	pollInterval time.Duration
	logger       logging.Logger
	workers      []*Worker
	wg           sync.WaitGroup
}

func NewPool(broker Broker, registry *Registry, policy Policy, metrics *Metrics, concurrency map[string]int, pollInterval time.Duration, logger logging.Logger) *Pool {
	return &Pool{
		broker:       broker,
		registry:     registry,
		policy:       policy,
		metrics:      metrics,
		concurrency:  concurrency,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run starts the workers for queues (all queues when empty) and blocks until
// ctx is cancelled and every worker has returned.
func (p *Pool) Run(ctx context.Context, queues ...Queue) {
	if len(queues) == 0 {
		queues = Queues
	}
	host, _ := os.Hostname()
	for _, q := range queues {
		n := p.concurrency[string(q)]
		if n <= 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			// worker ids are stable across restarts so Requeue finds the
			// previous run's processing list
			id := fmt.Sprintf("%s-%s-%d", host, q, i)
			w := NewWorker(id, q, p.broker, p.registry, p.policy, p.metrics, p.pollInterval, p.logger)
			p.workers = append(p.workers, w)
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				w.Start(ctx)
			}()
		}
	}
	p.logger.Info(fmt.Sprintf("started %d workers", len(p.workers)))
	<-ctx.Done()
	p.Stop()
	p.wg.Wait()
	p.logger.Info("all workers finished")
}

func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.Stop()
	}
}
