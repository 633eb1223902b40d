package analytics

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/models"
)

// Store is the subset of the relational store the importer writes through.
type Store interface {
	EnsureTenant(ctx context.Context, name string) (int64, error)
	StoreSearchAnalytics(ctx context.Context, rows []models.SearchAnalyticsRow, siteURL string, tenantID int64) error
	StoreCoverage(ctx context.Context, coverage models.CoverageSummary, siteURL string, tenantID int64) error
	StorePerformance(ctx context.Context, perf models.PerformanceSummary, siteURL string, tenantID int64) error
	StorePageSpeed(ctx context.Context, ps *models.PageSpeedResult, tenantID int64) (int64, error)
	StorePageSpeedOpportunities(ctx context.Context, opportunities []models.Opportunity, pageSpeedID int64) error
}

type ImportSummary struct {
	TenantID       int64   `json:"tenant_id"`
	SiteURL        string  `json:"site_url"`
	QueryRows      int     `json:"query_rows"`
	PageSpeedIDs   []int64 `json:"pagespeed_ids"`
	OpportunityCnt int     `json:"opportunities"`
}

type Importer struct {
	ingester Ingester
	store    Store
	logger   logging.Logger
}

func NewImporter(ingester Ingester, store Store, logger logging.Logger) *Importer {
	return &Importer{ingester: ingester, store: store, logger: logger}
}

// Import pulls search console data for siteURL and page speed data for each
// url, storing everything under tenant. The tenant is created on first use.
func (i *Importer) Import(ctx context.Context, tenant, siteURL string, urls []string) (*ImportSummary, error) {
	tenantID, err := i.store.EnsureTenant(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant %q: %w", tenant, err)
	}
	sc, err := i.ingester.SearchConsole(ctx, siteURL)
	if err != nil {
		return nil, fmt.Errorf("ingest search console data: %w", err)
	}
	if err = i.store.StoreSearchAnalytics(ctx, sc.SearchAnalytics, siteURL, tenantID); err != nil {
		return nil, err
	}
	if err = i.store.StoreCoverage(ctx, sc.Coverage, siteURL, tenantID); err != nil {
		return nil, err
	}
	if err = i.store.StorePerformance(ctx, sc.Performance, siteURL, tenantID); err != nil {
		return nil, err
	}

	summary := &ImportSummary{TenantID: tenantID, SiteURL: siteURL, QueryRows: len(sc.SearchAnalytics)}
	for _, u := range urls {
		ps, err := i.ingester.PageSpeed(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("ingest page speed for %s: %w", u, err)
		}
		id, err := i.store.StorePageSpeed(ctx, ps, tenantID)
		if err != nil {
			return nil, err
		}
		if err = i.store.StorePageSpeedOpportunities(ctx, ps.Opportunities, id); err != nil {
			return nil, err
		}
		summary.PageSpeedIDs = append(summary.PageSpeedIDs, id)
		summary.OpportunityCnt += len(ps.Opportunities)
	}
	i.logger.Info("analytics import complete",
		logging.String("tenant", tenant),
		logging.String("site_url", siteURL),
		logging.Int("query_rows", summary.QueryRows),
		logging.Int("pagespeed_rows", len(summary.PageSpeedIDs)),
	)
	return summary, nil
}
