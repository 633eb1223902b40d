// Package analytics supplies search-performance data for the audit engine
// and imports detailed reports into the relational store.
package analytics

import (
	"context"

	"github.com/amankumarsingh77/seo_audit/models"
)

// Source yields one domain-level snapshot per correlation run.
type Source interface {
	Snapshot(ctx context.Context, domain string) (*models.AnalyticsSnapshot, error)
}

// Ingester fetches the detailed reports that back a snapshot.
type Ingester interface {
	SearchConsole(ctx context.Context, siteURL string) (*models.SearchConsoleData, error)
	PageSpeed(ctx context.Context, url string) (*models.PageSpeedResult, error)
}
