// Package checks inspects a single page for technical SEO signals.
package checks

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/amankumarsingh77/seo_audit/internal/fetch"
	"github.com/amankumarsingh77/seo_audit/models"
)

// CoreWebVitalsPlaceholder is reported until a field-data provider is wired in.
const CoreWebVitalsPlaceholder = "Not implemented (requires external API or browser)"

// CheckSet is the full battery outcome for one URL.
type CheckSet struct {
	Indexability *models.IndexabilityResult
	Vitals       *models.CoreWebVitalsResult
	Schema       *models.SchemaMarkupResult
	Mobile       *models.MobileFriendlyResult
}

func (s *CheckSet) Results() []models.CheckResult {
	return []models.CheckResult{s.Indexability, s.Vitals, s.Schema, s.Mobile}
}

type Battery struct {
	fetcher fetch.Fetcher
}

func NewBattery(f fetch.Fetcher) *Battery {
	return &Battery{fetcher: f}
}

func (b *Battery) Indexability(ctx context.Context, url string) (*models.IndexabilityResult, error) {
	doc, err := b.document(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseIndexability(url, doc), nil
}

func (b *Battery) SchemaMarkup(ctx context.Context, url string) (*models.SchemaMarkupResult, error) {
	doc, err := b.document(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseSchemaMarkup(url, doc), nil
}

func (b *Battery) MobileFriendly(ctx context.Context, url string) (*models.MobileFriendlyResult, error) {
	doc, err := b.document(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseMobileFriendly(url, doc), nil
}

// CoreWebVitals performs no network access.
func (b *Battery) CoreWebVitals(_ context.Context, url string) (*models.CoreWebVitalsResult, error) {
	return &models.CoreWebVitalsResult{URL: url, CoreWebVitals: CoreWebVitalsPlaceholder}, nil
}

// Run fetches the page once and evaluates every check against it.
func (b *Battery) Run(ctx context.Context, url string) (*CheckSet, error) {
	doc, err := b.document(ctx, url)
	if err != nil {
		return nil, err
	}
	vitals, _ := b.CoreWebVitals(ctx, url)
	return &CheckSet{
		Indexability: ParseIndexability(url, doc),
		Vitals:       vitals,
		Schema:       ParseSchemaMarkup(url, doc),
		Mobile:       ParseMobileFriendly(url, doc),
	}, nil
}

func (b *Battery) document(ctx context.Context, url string) (*goquery.Document, error) {
	doc, err := fetch.Document(ctx, b.fetcher, url)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", url, err)
	}
	return doc, nil
}
