package analytics

import (
	"context"

	"github.com/amankumarsingh77/seo_audit/models"
)

// PlaceholderProvider answers with fixed sample data. It stands in for the
// search console and page speed APIs until real clients are configured; it
// still resolves credentials so the vault wiring is exercised end to end.
type PlaceholderProvider struct {
	creds *Credentials
}

func NewPlaceholderProvider(creds *Credentials) *PlaceholderProvider {
	return &PlaceholderProvider{creds: creds}
}

func (p *PlaceholderProvider) Snapshot(_ context.Context, domain string) (*models.AnalyticsSnapshot, error) {
	return &models.AnalyticsSnapshot{
		Domain:      domain,
		Impressions: 12345,
		Clicks:      678,
		CTR:         5.49,
	}, nil
}

func (p *PlaceholderProvider) SearchConsole(ctx context.Context, siteURL string) (*models.SearchConsoleData, error) {
	p.loadCredentials(ctx)
	return &models.SearchConsoleData{
		SiteURL: siteURL,
		SearchAnalytics: []models.SearchAnalyticsRow{
			{Query: "example query", Clicks: 100, Impressions: 1000, CTR: 10.0, Position: 1.2},
			{Query: "another query", Clicks: 50, Impressions: 500, CTR: 10.0, Position: 2.5},
		},
		Coverage:    models.CoverageSummary{Valid: 120, Errors: 5, Excluded: 10},
		Performance: models.PerformanceSummary{AvgPosition: 2.1, TotalClicks: 150, TotalImpressions: 1500},
	}, nil
}

func (p *PlaceholderProvider) PageSpeed(ctx context.Context, url string) (*models.PageSpeedResult, error) {
	p.loadCredentials(ctx)
	return &models.PageSpeedResult{
		URL:   url,
		LCP:   2.1,
		FID:   15,
		CLS:   0.08,
		Score: 89,
		Opportunities: []models.Opportunity{
			{Name: "Reduce unused JavaScript", Savings: "0.5s"},
			{Name: "Serve images in next-gen formats", Savings: "0.3s"},
		},
	}, nil
}

func (p *PlaceholderProvider) loadCredentials(ctx context.Context) map[string]any {
	if p.creds == nil {
		return nil
	}
	return p.creds.Load(ctx)
}
