package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amankumarsingh77/seo_audit/internal/analytics"
	"github.com/amankumarsingh77/seo_audit/internal/content"
	"github.com/amankumarsingh77/seo_audit/internal/discovery"
	"github.com/amankumarsingh77/seo_audit/internal/fetch"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/internal/report"
	"github.com/amankumarsingh77/seo_audit/models"
)

const (
	TaskDiscoveryAggregate = "discovery.aggregate"
	TaskAuditCorrelate     = "audit.correlate"
	TaskAuditMonitor       = "audit.monitor"
	TaskAuditIngest        = "audit.ingest_analytics"
	TaskContentRefresh     = "content.refresh"
	TaskContentSuggest     = "content.suggest"
	TaskContentUpdate      = "content.update"
	TaskContentMonitor     = "content.monitor_update"
	TaskContentQuality     = "content.quality"
	TaskBacklinkAgent      = "backlink.agent"
)

var errMissingField = errors.New("missing required field")

type Discoverer interface {
	Aggregate(ctx context.Context, domain string) (*discovery.Result, error)
}

type Auditor interface {
	Correlate(ctx context.Context, domain string) []models.Issue
	CorrelatePage(ctx context.Context, domain, path string) []models.Issue
}

type Monitor interface {
	Deploy(ctx context.Context, urls []string) ([]models.Alert, error)
}

type AnalyticsImporter interface {
	Import(ctx context.Context, tenant, siteURL string, urls []string) (*analytics.ImportSummary, error)
}

type ReportSink interface {
	Save(ctx context.Context, rec *models.AuditReport) error
}

// DomainPayload.Page, when set, narrows an audit to that one page with no
// discovery.
type DomainPayload struct {
	Domain string `json:"domain"`
	Page   string `json:"page,omitempty"`
}

type URLsPayload struct {
	URLs []string `json:"urls"`
}

type IngestPayload struct {
	Tenant  string   `json:"tenant"`
	SiteURL string   `json:"site_url"`
	URLs    []string `json:"urls"`
}

type RefreshPayload struct {
	URLs   []string `json:"urls,omitempty"`
	Prompt string   `json:"prompt,omitempty"`
}

type SuggestPayload struct {
	Prompt string `json:"prompt,omitempty"`
	URL    string `json:"url,omitempty"`
}

type UpdatePayload struct {
	URL        string `json:"url"`
	NewContent string `json:"new_content"`
}

type MonitorUpdatePayload struct {
	URL      string `json:"url"`
	Status   string `json:"status"`
	Feedback string `json:"feedback,omitempty"`
}

type QualityPayload struct {
	URL       string   `json:"url,omitempty"`
	Content   string   `json:"content,omitempty"`
	MinLength int      `json:"min_length,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

type DiscoverySummary struct {
	Domain     string   `json:"domain"`
	URLs       []string `json:"urls"`
	NewURLs    int      `json:"new_urls"`
	Disallowed []string `json:"disallowed,omitempty"`
}

// Agents carries the collaborators behind the task handlers. Nil
// collaborators leave their tasks failing with a clear error.
type Agents struct {
	Discoverer    Discoverer
	Auditor       Auditor
	Monitor       Monitor
	Importer      AnalyticsImporter
	Suggester     content.Suggester
	Updater       content.Updater
	Fetcher       fetch.Fetcher
	Reports       ReportSink
	Enqueuer      Enqueuer
	RefreshURLs   []string
	RefreshPrompt string
	MinLength     int
	Keywords      []string
	Logger        logging.Logger
}

func (a *Agents) log(ctx context.Context) logging.Logger {
	return logging.FromContext(ctx, a.Logger)
}

// Register binds every agent task to its queue.
func (a *Agents) Register(r *Registry) error {
	bindings := []struct {
		name  string
		queue Queue
		h     Handler
	}{
		{TaskDiscoveryAggregate, QueueDiscovery, a.discover},
		{TaskAuditCorrelate, QueueAudit, a.correlate},
		{TaskAuditMonitor, QueueAudit, a.monitor},
		{TaskAuditIngest, QueueAudit, a.ingest},
		{TaskContentRefresh, QueueContent, a.refresh},
		{TaskContentSuggest, QueueContent, a.suggest},
		{TaskContentUpdate, QueueContent, a.update},
		{TaskContentMonitor, QueueContent, a.monitorUpdate},
		{TaskContentQuality, QueueContent, a.quality},
		{TaskBacklinkAgent, QueueBacklink, a.backlink},
	}
	for _, b := range bindings {
		if err := r.Register(b.name, b.queue, b.h); err != nil {
			return err
		}
	}
	return nil
}

func (a *Agents) discover(ctx context.Context, payload json.RawMessage) (any, error) {
	var p DomainPayload
	if err := Decode(payload, &p); err != nil {
		return nil, err
	}
	if a.Discoverer == nil {
		return nil, errors.New("discovery agent not configured")
	}
	res, err := a.Discoverer.Aggregate(ctx, p.Domain)
	if err != nil {
		return nil, err
	}
	a.log(ctx).Info("discovery agent task executed", logging.String("domain", p.Domain), logging.Int("urls", res.WorkingSet.Len()))
	return DiscoverySummary{
		Domain:     res.Domain,
		URLs:       res.WorkingSet.URLs(),
		NewURLs:    res.NewURLs,
		Disallowed: res.Disallowed,
	}, nil
}

// correlate always yields issue records; an archive failure is the only
// error that triggers a retry.
func (a *Agents) correlate(ctx context.Context, payload json.RawMessage) (any, error) {
	var p DomainPayload
	if err := Decode(payload, &p); err != nil {
		return nil, err
	}
	if a.Auditor == nil {
		return nil, errors.New("audit agent not configured")
	}
	var issues []models.Issue
	if p.Page != "" {
		issues = a.Auditor.CorrelatePage(ctx, p.Domain, p.Page)
	} else {
		issues = a.Auditor.Correlate(ctx, p.Domain)
	}
	if a.Reports != nil {
		rec := report.NewRecord(p.Domain, p.Page, issues)
		if t, ok := FromContext(ctx); ok {
			rec.TaskID = t.ID
		}
		if err := a.Reports.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("archive audit report: %w", err)
		}
	}
	a.log(ctx).Info("audit agent task executed", logging.String("domain", p.Domain), logging.Int("issues", len(issues)))
	return issues, nil
}

func (a *Agents) monitor(ctx context.Context, payload json.RawMessage) (any, error) {
	var p URLsPayload
	if err := Decode(payload, &p); err != nil {
		return nil, err
	}
	if len(p.URLs) == 0 {
		return nil, fmt.Errorf("%w: urls", errMissingField)
	}
	if a.Monitor == nil {
		return nil, errors.New("monitoring agent not configured")
	}
	return a.Monitor.Deploy(ctx, p.URLs)
}

func (a *Agents) ingest(ctx context.Context, payload json.RawMessage) (any, error) {
	var p IngestPayload
	if err := Decode(payload, &p); err != nil {
		return nil, err
	}
	if p.Tenant == "" || p.SiteURL == "" {
		return nil, fmt.Errorf("%w: tenant and site_url", errMissingField)
	}
	if a.Importer == nil {
		return nil, errors.New("analytics importer not configured")
	}
	return a.Importer.Import(ctx, p.Tenant, p.SiteURL, p.URLs)
}

// refresh fans out one suggestion task per URL; each suggestion enqueues
// its own update.
func (a *Agents) refresh(ctx context.Context, payload json.RawMessage) (any, error) {
	var p RefreshPayload
	if err := Decode(payload, &p); err != nil {
		return nil, err
	}
	urls := p.URLs
	if len(urls) == 0 {
		urls = a.RefreshURLs
	}
	prompt := p.Prompt
	if prompt == "" {
		prompt = a.RefreshPrompt
	}
	if a.Enqueuer == nil {
		return nil, errors.New("content refresh needs a task client")
	}
	for _, url := range urls {
		if _, err := a.Enqueuer.Enqueue(ctx, TaskContentSuggest, SuggestPayload{
			Prompt: content.Prompt(prompt, url),
			URL:    url,
		}); err != nil {
			return nil, fmt.Errorf("queue suggestion for %s: %w", url, err)
		}
	}
	a.log(ctx).Info(fmt.Sprintf("automated content refresh queued for %d URLs", len(urls)))
	return fmt.Sprintf("Automated content refresh queued for %d URLs.", len(urls)), nil
}

func (a *Agents) suggest(ctx context.Context, payload json.RawMessage) (any, error) {
	var p SuggestPayload
	if err := Decode(payload, &p); err != nil {
		return nil, err
	}
	if p.Prompt == "" {
		if p.URL == "" {
			return nil, fmt.Errorf("%w: prompt or url", errMissingField)
		}
		p.Prompt = content.Prompt(a.RefreshPrompt, p.URL)
	}
	if a.Suggester == nil {
		return nil, errors.New("content suggester not configured")
	}
	suggestion, err := a.Suggester.Suggest(ctx, p.Prompt)
	if err != nil {
		return nil, err
	}
	if p.URL != "" && a.Enqueuer != nil {
		if _, err := a.Enqueuer.Enqueue(ctx, TaskContentUpdate, UpdatePayload{URL: p.URL, NewContent: suggestion}); err != nil {
			return nil, fmt.Errorf("queue update for %s: %w", p.URL, err)
		}
	}
	return suggestion, nil
}

func (a *Agents) update(ctx context.Context, payload json.RawMessage) (any, error) {
	var p UpdatePayload
	if err := Decode(payload, &p); err != nil {
		return nil, err
	}
	if p.URL == "" {
		return nil, fmt.Errorf("%w: url", errMissingField)
	}
	if a.Updater == nil {
		return nil, errors.New("content updater not configured")
	}
	msg, err := a.Updater.Update(ctx, p.URL, p.NewContent)
	if err != nil {
		return nil, err
	}
	if a.Enqueuer != nil {
		if _, err := a.Enqueuer.Enqueue(ctx, TaskContentMonitor, MonitorUpdatePayload{URL: p.URL, Status: "success"}); err != nil {
			a.log(ctx).Warn("failed to queue update monitoring", logging.String("url", p.URL), logging.Error(err))
		}
	}
	return msg, nil
}

func (a *Agents) monitorUpdate(ctx context.Context, payload json.RawMessage) (any, error) {
	var p MonitorUpdatePayload
	if err := Decode(payload, &p); err != nil {
		return nil, err
	}
	a.log(ctx).Info("monitoring content update",
		logging.String("url", p.URL),
		logging.String("status", p.Status),
		logging.String("feedback", p.Feedback),
	)
	return content.MonitorUpdate(p.URL, p.Status, p.Feedback), nil
}

func (a *Agents) quality(ctx context.Context, payload json.RawMessage) (any, error) {
	var p QualityPayload
	if err := Decode(payload, &p); err != nil {
		return nil, err
	}
	text := p.Content
	if text == "" {
		if p.URL == "" || a.Fetcher == nil {
			return nil, fmt.Errorf("%w: content or url", errMissingField)
		}
		article, err := content.Extract(ctx, a.Fetcher, p.URL)
		if err != nil {
			return nil, err
		}
		text = article.Text
	}
	minLength := p.MinLength
	if minLength <= 0 {
		minLength = a.MinLength
	}
	keywords := p.Keywords
	if len(keywords) == 0 {
		keywords = a.Keywords
	}
	return content.CheckQuality(text, minLength, keywords), nil
}

func (a *Agents) backlink(ctx context.Context, _ json.RawMessage) (any, error) {
	a.log(ctx).Info("backlink agent task executed")
	return "Backlink agent task executed", nil
}
