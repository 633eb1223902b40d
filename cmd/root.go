package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configFile string

	cfg    *config.AuditorConfig
	logger logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "seo-audit",
	Short: "Technical SEO auditor",
	Long: `seo-audit discovers the URLs a site publishes, runs on-page checks
against each of them, correlates the results with search analytics and
renders the flagged pages as Markdown or HTML reports. Long-running work
is handed to queue workers and an hourly scheduler.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: cfg.Logging.OutputPaths,
		})
		return err
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (YAML); SEO_AUDIT_* env vars override it")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(beatCmd)
	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(credentialsCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			logger.Info("received shutdown signal, gracefully shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
