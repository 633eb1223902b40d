package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/internal/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	workerQueues      []string
	workerMetricsAddr string
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume queued agent tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := newApp(ctx, cfg, logger)
		defer a.Close()

		rt, err := a.tasks(ctx, prometheus.DefaultRegisterer, a.archive(ctx))
		if err != nil {
			return err
		}
		queues := make([]tasks.Queue, 0, len(workerQueues))
		for _, q := range workerQueues {
			queues = append(queues, tasks.Queue(q))
		}
		if workerMetricsAddr != "" {
			srv := &http.Server{Addr: workerMetricsAddr, Handler: promhttp.Handler()}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server failed", logging.Error(err))
				}
			}()
			defer srv.Close()
		}
		pool := tasks.NewPool(rt.broker, rt.registry, rt.policy, rt.metrics, cfg.Tasks.Concurrency, cfg.Tasks.PollInterval, logger.Named("worker"))
		pool.Run(ctx, queues...)
		return nil
	},
}

var beatCmd = &cobra.Command{
	Use:   "beat",
	Short: "Enqueue the periodic content refresh",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := newApp(ctx, cfg, logger)
		defer a.Close()

		rt, err := a.tasks(ctx, prometheus.NewRegistry(), nil)
		if err != nil {
			return err
		}
		spec := cfg.Tasks.RefreshCron
		if spec == "" {
			spec = tasks.DefaultRefreshSpec
		}
		sched := tasks.NewScheduler(rt.client, logger.Named("beat"))
		payload := tasks.RefreshPayload{URLs: cfg.Tasks.RefreshURLs, Prompt: cfg.Tasks.RefreshPrompt}
		if err := sched.Every(ctx, spec, tasks.TaskContentRefresh, payload); err != nil {
			return err
		}
		sched.Start()
		<-ctx.Done()
		sched.Stop()
		return nil
	},
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <task> [json-payload]",
	Short: "Submit a task to its queue",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := newApp(ctx, cfg, logger)
		defer a.Close()

		rt, err := a.tasks(ctx, prometheus.NewRegistry(), nil)
		if err != nil {
			return err
		}
		payload := json.RawMessage("{}")
		if len(args) == 2 {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("payload for %s is not valid JSON", args[0])
			}
			payload = json.RawMessage(args[1])
		}
		t, err := rt.client.Enqueue(ctx, args[0], payload)
		if err != nil {
			return err
		}
		logger.Info("submitted", logging.String("task", t.Name), logging.String("task_id", t.ID))
		fmt.Fprintln(cmd.OutOrStdout(), t.ID)
		return nil
	},
}

func init() {
	workerCmd.Flags().StringSliceVarP(&workerQueues, "queues", "q", nil, "queues to consume (default all)")
	workerCmd.Flags().StringVar(&workerMetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
}
