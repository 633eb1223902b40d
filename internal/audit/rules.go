package audit

import (
	"github.com/amankumarsingh77/seo_audit/internal/checks"
	"github.com/amankumarsingh77/seo_audit/models"
)

type Thresholds struct {
	MinImpressions int
	MinClicks      int
}

func DefaultThresholds() Thresholds {
	return Thresholds{MinImpressions: 100, MinClicks: 10}
}

// Classify applies the rules in their fixed reporting order. It is a pure
// function of its inputs.
func Classify(set *checks.CheckSet, snap *models.AnalyticsSnapshot, th Thresholds) []models.IssueKind {
	flags := []models.IssueKind{}
	if !set.Indexability.Indexable {
		flags = append(flags, models.IssueNotIndexable)
	}
	if !set.Schema.HasMarkup() {
		flags = append(flags, models.IssueNoSchemaMarkup)
	}
	if !set.Mobile.MobileFriendly {
		flags = append(flags, models.IssueNotMobileFriendly)
	}
	if snap.Impressions < th.MinImpressions {
		flags = append(flags, models.IssueLowImpressions)
	}
	if snap.Clicks < th.MinClicks {
		flags = append(flags, models.IssueLowClicks)
	}
	return flags
}

// BuildIssue merges the check results for url with the domain snapshot.
func BuildIssue(url string, set *checks.CheckSet, snap *models.AnalyticsSnapshot, th Thresholds) models.Issue {
	return models.Issue{
		URL:            url,
		Indexable:      set.Indexability.Indexable,
		MetaRobots:     set.Indexability.MetaRobots,
		CoreWebVitals:  set.Vitals.CoreWebVitals,
		SchemaJSONLD:   set.Schema.JSONLD,
		MicrodataCount: set.Schema.MicrodataCount,
		RDFaCount:      set.Schema.RDFaCount,
		MobileFriendly: set.Mobile.MobileFriendly,
		Viewport:       set.Mobile.Viewport,
		Impressions:    snap.Impressions,
		Clicks:         snap.Clicks,
		CTR:            snap.CTR,
		Flags:          Classify(set, snap, th),
	}
}
