package monitor

import (
	"context"
	"fmt"
	"strings"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/models"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxChain       = 5
	DefaultErrorThreshold = 2
	checkParallelism      = 8
)

type Agent struct {
	tracer         RedirectTracer
	sampler        StatusSampler
	maxChain       int
	errorThreshold int
	logger         logging.Logger
}

func NewAgent(tracer RedirectTracer, sampler StatusSampler, maxChain, errorThreshold int, logger logging.Logger) *Agent {
	if tracer == nil {
		tracer = SyntheticTracer{}
	}
	if sampler == nil {
		sampler = SyntheticSampler{}
	}
	return &Agent{
		tracer:         tracer,
		sampler:        sampler,
		maxChain:       maxChain,
		errorThreshold: errorThreshold,
		logger:         logger,
	}
}

// TraceRedirects traces every url concurrently; results keep input order.
func (a *Agent) TraceRedirects(ctx context.Context, urls []string, maxChain int) ([]RedirectResult, error) {
	results := make([]RedirectResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkParallelism)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			chain, err := a.tracer.Trace(gctx, u, maxChain)
			if err != nil {
				return fmt.Errorf("trace redirects for %s: %w", u, err)
			}
			results[i] = RedirectResult{URL: u, RedirectChain: chain, Issues: RedirectIssues(chain, maxChain)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SampleUptime samples every url concurrently; results keep input order.
func (a *Agent) SampleUptime(ctx context.Context, urls []string, errorThreshold int) ([]UptimeResult, error) {
	results := make([]UptimeResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkParallelism)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			history, err := a.sampler.History(gctx, u)
			if err != nil {
				return fmt.Errorf("sample status for %s: %w", u, err)
			}
			results[i] = UptimeResult{URL: u, StatusHistory: history, Issues: UptimeIssues(history, errorThreshold)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AggregateAlerts groups findings by URL in first-seen order, redirect
// findings before uptime ones for the same URL.
func AggregateAlerts(redirects []RedirectResult, uptime []UptimeResult) []models.Alert {
	type finding struct {
		kind   models.AlertType
		detail string
	}
	var order []string
	byURL := make(map[string][]finding)
	add := func(url string, kind models.AlertType, issues []string) {
		if len(issues) == 0 {
			return
		}
		if _, ok := byURL[url]; !ok {
			order = append(order, url)
		}
		for _, detail := range issues {
			byURL[url] = append(byURL[url], finding{kind, detail})
		}
	}
	for _, r := range redirects {
		add(r.URL, models.AlertRedirect, r.Issues)
	}
	for _, u := range uptime {
		add(u.URL, models.AlertUptime, u.Issues)
	}

	alerts := []models.Alert{}
	for _, url := range order {
		for _, f := range byURL[url] {
			alerts = append(alerts, models.Alert{
				URL:       url,
				IssueType: f.kind,
				Severity:  SeverityFor(f.detail),
				Detail:    f.detail,
			})
		}
	}
	return alerts
}

func SeverityFor(detail string) models.Severity {
	d := strings.ToLower(detail)
	if strings.Contains(d, "downtime") || strings.Contains(d, "exceeds") {
		return models.SeverityCritical
	}
	return models.SeverityWarning
}

// Deploy runs both checks with the agent's thresholds and returns the alerts.
func (a *Agent) Deploy(ctx context.Context, urls []string) ([]models.Alert, error) {
	a.logger.Info("starting monitoring agent deployment", logging.Int("urls", len(urls)))
	redirects, err := a.TraceRedirects(ctx, urls, a.maxChain)
	if err != nil {
		return nil, err
	}
	uptime, err := a.SampleUptime(ctx, urls, a.errorThreshold)
	if err != nil {
		return nil, err
	}
	alerts := AggregateAlerts(redirects, uptime)
	a.logger.Info(fmt.Sprintf("monitoring complete. %d alerts generated.", len(alerts)))
	return alerts, nil
}
