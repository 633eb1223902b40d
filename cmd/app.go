package main

import (
	"context"
	"errors"

	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/amankumarsingh77/seo_audit/internal/analytics"
	"github.com/amankumarsingh77/seo_audit/internal/archive"
	"github.com/amankumarsingh77/seo_audit/internal/audit"
	"github.com/amankumarsingh77/seo_audit/internal/checks"
	"github.com/amankumarsingh77/seo_audit/internal/content"
	"github.com/amankumarsingh77/seo_audit/internal/discovery"
	"github.com/amankumarsingh77/seo_audit/internal/fetch"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/internal/monitor"
	"github.com/amankumarsingh77/seo_audit/internal/secrets"
	"github.com/amankumarsingh77/seo_audit/internal/store"
	"github.com/amankumarsingh77/seo_audit/internal/tasks"
	"github.com/prometheus/client_golang/prometheus"
)

// app holds the collaborators shared by the subcommands. Optional backends
// that cannot be reached are left nil and logged.
type app struct {
	cfg    *config.AuditorConfig
	logger logging.Logger

	fetcher    *fetch.HttpClient
	aggregator *discovery.Aggregator
	provider   *analytics.PlaceholderProvider
	engine     *audit.Engine
	monitor    *monitor.Agent
	suggester  content.Suggester
	updater    content.Updater

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.AuditorConfig, logger logging.Logger) *app {
	a := &app{cfg: cfg, logger: logger}

	a.fetcher = fetch.NewHttpClient(&cfg.HTTP, logger.Named("fetch"))

	var seen discovery.SeenFilter
	if cfg.Redis.BloomEnabled {
		bloom, err := discovery.NewRedisBloomFilter(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("bloom filter unavailable, novelty tracking disabled", logging.Error(err))
		} else {
			seen = bloom
		}
	}
	a.aggregator = discovery.NewAggregator(discovery.NewCollector(&cfg.HTTP), seen, logger.Named("discovery"))

	creds := analytics.NewCredentials(newVault(ctx, cfg, logger), cfg.Secrets.AnalyticsSecret, logger)
	a.provider = analytics.NewPlaceholderProvider(creds)
	source := analytics.NewCachedSource(a.provider, analytics.NewLRUCache(cfg.Audit.AnalyticsCache, cfg.Audit.AnalyticsTTL))

	th := audit.Thresholds{MinImpressions: cfg.Audit.MinImpressions, MinClicks: cfg.Audit.MinClicks}
	a.engine = audit.NewEngine(a.aggregator, checks.NewBattery(a.fetcher), source, th, logger.Named("audit"))

	a.monitor = monitor.NewAgent(nil, nil, cfg.Monitor.MaxChain, cfg.Monitor.ErrorThreshold, logger.Named("monitor"))
	a.suggester = content.NewChatSuggester(&cfg.Content, logger.Named("content"))
	a.updater = content.NewLogUpdater(logger.Named("content"))
	return a
}

// newVault prefers AWS Secrets Manager and falls back to an in-process vault
// so audits still run without cloud credentials.
func newVault(ctx context.Context, cfg *config.AuditorConfig, logger logging.Logger) secrets.Vault {
	vault, err := secrets.NewAWSVault(ctx, &cfg.Secrets, logger.Named("secrets"))
	if err != nil {
		logger.Warn("secrets manager unavailable, using in-memory vault", logging.Error(err))
		return secrets.NewMemoryVault()
	}
	return vault
}

func (a *app) archive(ctx context.Context) archive.Archive {
	client, err := archive.NewMongoClient(ctx, &a.cfg.Mongo)
	if err != nil {
		a.logger.Warn("mongodb unavailable, keeping reports in memory", logging.Error(err))
		return archive.NewMemoryArchive()
	}
	a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
	coll := client.Database(a.cfg.Mongo.DBName).Collection(a.cfg.Mongo.ReportColl)
	return archive.NewReportArchive(coll, a.logger.Named("archive"))
}

func (a *app) store(ctx context.Context) (*store.Store, error) {
	s, err := store.NewPostgresStore(ctx, &a.cfg.DB, a.logger.Named("store"))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, s.Close)
	return s, nil
}

// taskRuntime is the queue side of the app: a Redis broker, the registry
// with every agent bound, and a client that enqueues through both.
type taskRuntime struct {
	broker   tasks.Broker
	registry *tasks.Registry
	client   *tasks.Client
	metrics  *tasks.Metrics
	policy   tasks.Policy
}

func (a *app) tasks(ctx context.Context, reg prometheus.Registerer, reports archive.Archive) (*taskRuntime, error) {
	rdb, err := tasks.NewRedisClient(ctx, &a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	broker := tasks.NewRedisBroker(rdb, a.cfg.Redis.KeyPrefix)
	a.closers = append(a.closers, broker.Close)

	rt := &taskRuntime{
		broker:   broker,
		registry: tasks.NewRegistry(),
		metrics:  tasks.NewMetrics(reg),
		policy:   tasks.PolicyFromConfig(&a.cfg.Tasks),
	}
	rt.client = tasks.NewClient(rt.registry, broker, rt.policy, rt.metrics, a.logger.Named("tasks"))

	agents := &tasks.Agents{
		Discoverer:    a.aggregator,
		Auditor:       a.engine,
		Monitor:       a.monitor,
		Suggester:     a.suggester,
		Updater:       a.updater,
		Fetcher:       a.fetcher,
		Reports:       reports,
		Enqueuer:      rt.client,
		RefreshURLs:   a.cfg.Tasks.RefreshURLs,
		RefreshPrompt: a.cfg.Tasks.RefreshPrompt,
		MinLength:     a.cfg.Content.MinLength,
		Keywords:      a.cfg.Content.RequiredKeywords,
		Logger:        a.logger.Named("agents"),
	}
	if s, err := a.store(ctx); err != nil {
		a.logger.Warn("postgres unavailable, analytics import disabled", logging.Error(err))
	} else {
		agents.Importer = analytics.NewImporter(a.provider, s, a.logger.Named("import"))
	}
	if err := agents.Register(rt.registry); err != nil {
		return nil, err
	}
	return rt, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
