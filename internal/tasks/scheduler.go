package tasks

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/robfig/cron/v3"
)

// DefaultRefreshSpec fires at minute zero of every hour.
const DefaultRefreshSpec = "0 * * * *"

type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any) (*Task, error)
}

// Scheduler wraps robfig/cron and turns ticks into enqueued tasks.
type Scheduler struct {
	cron     *cron.Cron
	enqueuer Enqueuer
	logger   logging.Logger
}

func NewScheduler(enqueuer Enqueuer, logger logging.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// Every registers name to be enqueued with payload on each tick of spec.
func (s *Scheduler) Every(ctx context.Context, spec, name string, payload any) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.enqueuer.Enqueue(ctx, name, payload); err != nil {
			s.logger.Error("scheduled enqueue failed", logging.String("task", name), logging.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron started", logging.Int("entries", len(s.cron.Entries())))
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron stopped")
}

type cronLogger struct {
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(kvFields(keysAndValues), logging.Error(err))...)
}

func kvFields(kv []any) []logging.Field {
	fields := make([]logging.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logging.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
