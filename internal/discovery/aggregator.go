package discovery

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/models"
)

const robotsAgent = "*"

type Result struct {
	Domain     string
	Robots     *Robots
	Records    []models.URLRecord
	WorkingSet *models.WorkingSet
	// NewURLs counts working-set URLs never seen by a previous run; it stays
	// zero without a SeenFilter.
	NewURLs int
	// Disallowed lists working-set URLs that robots.txt blocks for all agents.
	Disallowed []string
}

type Aggregator struct {
	robots   *RobotsSource
	sitemap  Lister
	manifest Lister
	seen     SeenFilter
	logger   logging.Logger
}

func NewAggregator(g Getter, seen SeenFilter, logger logging.Logger) *Aggregator {
	return &Aggregator{
		robots:   NewRobotsSource(g, logger),
		sitemap:  NewSitemapSource(g, logger),
		manifest: NewManifestSource(g, logger),
		seen:     seen,
		logger:   logger,
	}
}

// Aggregate runs the three sources in order: robots.txt, sitemap, manifest.
// A transport failure on robots.txt or the sitemap aborts the run.
func (a *Aggregator) Aggregate(ctx context.Context, domain string) (*Result, error) {
	base, err := BaseURL(domain)
	if err != nil {
		return nil, err
	}
	robots, err := a.robots.Load(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("discover robots.txt: %w", err)
	}
	sitemapURLs, err := a.sitemap.List(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("discover sitemap: %w", err)
	}
	manifestURLs, err := a.manifest.List(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("discover manifest: %w", err)
	}

	res := &Result{
		Domain:     base,
		Robots:     robots,
		WorkingSet: models.NewWorkingSet(),
	}
	a.collect(res, base, sitemapURLs, models.SourceSitemap)
	a.collect(res, base, manifestURLs, models.SourceManifest)

	for _, u := range res.WorkingSet.URLs() {
		if !robots.Allowed(u, robotsAgent) {
			res.Disallowed = append(res.Disallowed, u)
		}
	}
	a.trackNovelty(res)

	a.logger.Info("discovery complete",
		logging.String("domain", base),
		logging.Int("sitemap_urls", len(sitemapURLs)),
		logging.Int("manifest_urls", len(manifestURLs)),
		logging.Int("working_set", res.WorkingSet.Len()),
		logging.Int("new_urls", res.NewURLs),
	)
	return res, nil
}

func (a *Aggregator) collect(res *Result, base string, raws []string, source models.Source) {
	for _, raw := range raws {
		u, err := ResolveURL(base, raw)
		if err != nil {
			a.logger.Debug("skipping unusable url", logging.String("url", raw), logging.Error(err))
			continue
		}
		res.Records = append(res.Records, models.URLRecord{URL: u, Source: source})
		res.WorkingSet.Add(u)
	}
}

func (a *Aggregator) trackNovelty(res *Result) {
	if a.seen == nil {
		return
	}
	for _, u := range res.WorkingSet.URLs() {
		exists, err := a.seen.Exists(u)
		if err != nil {
			a.logger.Warn("seen filter unavailable, skipping novelty tracking", logging.Error(err))
			return
		}
		if exists {
			continue
		}
		if err = a.seen.Add(u); err != nil {
			a.logger.Warn("failed to add url to seen filter", logging.String("url", u), logging.Error(err))
			continue
		}
		res.NewURLs++
	}
}
