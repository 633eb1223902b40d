package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the audit API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a := newApp(ctx, cfg, logger)
		defer a.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		reports := a.archive(ctx)
		opts := api.Options{
			Auditor:       a.engine,
			Reports:       reports,
			Metrics:       promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			SettingsToken: cfg.API.SettingsToken,
			Logger:        logger.Named("api"),
		}
		rt, err := a.tasks(ctx, reg, reports)
		if err != nil {
			logger.Warn("task broker unavailable, task submission disabled", logging.Error(err))
		} else {
			opts.Tasks = rt.client
		}

		app := api.NewApp()
		api.NewAuditAPI(opts).RegisterRoutes(app)

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting audit API", logging.String("addr", cfg.API.HTTPAddr))
			errCh <- app.Listen(cfg.API.HTTPAddr)
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down server")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logger.Error("fiber shutdown failed", logging.Error(err))
		}
		logger.Info("server exited properly")
		return nil
	},
}
