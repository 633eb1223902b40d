// Package audit correlates page checks with search analytics and turns the
// result into classified issues.
package audit

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/amankumarsingh77/seo_audit/internal/analytics"
	"github.com/amankumarsingh77/seo_audit/internal/checks"
	"github.com/amankumarsingh77/seo_audit/internal/discovery"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/models"
)

type Discoverer interface {
	Aggregate(ctx context.Context, domain string) (*discovery.Result, error)
}

type Checker interface {
	Run(ctx context.Context, url string) (*checks.CheckSet, error)
}

type Engine struct {
	discoverer Discoverer
	checker    Checker
	analytics  analytics.Source
	thresholds Thresholds
	logger     logging.Logger
}

func NewEngine(d Discoverer, c Checker, a analytics.Source, th Thresholds, logger logging.Logger) *Engine {
	return &Engine{
		discoverer: d,
		checker:    c,
		analytics:  a,
		thresholds: th,
		logger:     logger,
	}
}

// Run discovers the domain's URLs and builds one issue per URL in working-set
// order. The first failure aborts the whole run.
func (e *Engine) Run(ctx context.Context, domain string) ([]models.Issue, error) {
	res, err := e.discoverer.Aggregate(ctx, domain)
	if err != nil {
		return nil, err
	}
	snap, err := e.analytics.Snapshot(ctx, res.Domain)
	if err != nil {
		return nil, fmt.Errorf("fetch analytics for %s: %w", res.Domain, err)
	}
	issues := make([]models.Issue, 0, res.WorkingSet.Len())
	for _, u := range res.WorkingSet.URLs() {
		issue, err := e.auditURL(ctx, res.Domain, u, snap)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	e.logger.Info("correlation complete",
		logging.String("domain", res.Domain),
		logging.Int("urls", len(issues)),
		logging.Int("flagged", countFlagged(issues)),
	)
	return issues, nil
}

// RunPath audits a single page of domain without discovery.
func (e *Engine) RunPath(ctx context.Context, domain, path string) ([]models.Issue, error) {
	base, err := discovery.BaseURL(domain)
	if err != nil {
		return nil, err
	}
	target, err := discovery.ResolveURL(base, path)
	if err != nil {
		return nil, err
	}
	snap, err := e.analytics.Snapshot(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("fetch analytics for %s: %w", base, err)
	}
	issue, err := e.auditURL(ctx, base, target, snap)
	if err != nil {
		return nil, err
	}
	return []models.Issue{issue}, nil
}

// Correlate is Run in record form: a failure becomes a single error record
// instead of a Go error.
func (e *Engine) Correlate(ctx context.Context, domain string) []models.Issue {
	return e.asRecords(e.Run(ctx, domain))
}

// CorrelatePage is RunPath in record form. It skips discovery, so robots
// and sitemap failures do not abort it; full audits go through Correlate.
func (e *Engine) CorrelatePage(ctx context.Context, domain, path string) []models.Issue {
	return e.asRecords(e.RunPath(ctx, domain, strings.TrimSpace(path)))
}

func (e *Engine) asRecords(issues []models.Issue, err error) []models.Issue {
	if err != nil {
		e.logger.Error("correlation failed", logging.Error(err))
		return []models.Issue{models.ErrorIssue(err.Error())}
	}
	return issues
}

func (e *Engine) auditURL(ctx context.Context, base, raw string, snap *models.AnalyticsSnapshot) (models.Issue, error) {
	target := raw
	if !strings.HasPrefix(raw, "http") {
		b, err := url.Parse(base)
		if err != nil {
			return models.Issue{}, err
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return models.Issue{}, err
		}
		target = b.ResolveReference(ref).String()
	}
	set, err := e.checker.Run(ctx, target)
	if err != nil {
		return models.Issue{}, err
	}
	return BuildIssue(target, set, snap, e.thresholds), nil
}

func countFlagged(issues []models.Issue) int {
	n := 0
	for _, i := range issues {
		if len(i.Flags) > 0 {
			n++
		}
	}
	return n
}
