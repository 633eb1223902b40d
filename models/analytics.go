package models

// AnalyticsSnapshot holds domain-level search performance totals.
type AnalyticsSnapshot struct {
	Domain      string  `json:"domain"`
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	CTR         float64 `json:"ctr"`
}

type SearchAnalyticsRow struct {
	Query       string  `json:"query" db:"query"`
	Clicks      int     `json:"clicks" db:"clicks"`
	Impressions int     `json:"impressions" db:"impressions"`
	CTR         float64 `json:"ctr" db:"ctr"`
	Position    float64 `json:"position" db:"position"`
}

type CoverageSummary struct {
	Valid    int `json:"valid" db:"valid"`
	Errors   int `json:"error" db:"error"`
	Excluded int `json:"excluded" db:"excluded"`
}

type PerformanceSummary struct {
	AvgPosition      float64 `json:"average_position" db:"average_position"`
	TotalClicks      int     `json:"total_clicks" db:"total_clicks"`
	TotalImpressions int     `json:"total_impressions" db:"total_impressions"`
}

type SearchConsoleData struct {
	SiteURL         string               `json:"site_url"`
	SearchAnalytics []SearchAnalyticsRow `json:"search_analytics"`
	Coverage        CoverageSummary      `json:"coverage"`
	Performance     PerformanceSummary   `json:"performance"`
}

type Opportunity struct {
	Name    string `json:"name" db:"name"`
	Savings string `json:"savings" db:"savings"`
}

// PageSpeedResult carries lab metrics; optional timings are nil when the
// provider does not report them.
type PageSpeedResult struct {
	URL           string        `json:"url" db:"url"`
	LCP           float64       `json:"lcp" db:"lcp"`
	FID           float64       `json:"fid" db:"fid"`
	CLS           float64       `json:"cls" db:"cls"`
	Score         int           `json:"score" db:"score"`
	TTFB          *float64      `json:"ttfb" db:"ttfb"`
	FCP           *float64      `json:"fcp" db:"fcp"`
	TTI           *float64      `json:"tti" db:"tti"`
	TBT           *float64      `json:"tbt" db:"tbt"`
	Opportunities []Opportunity `json:"opportunities" db:"-"`
}
