// Package report renders correlated issues as Markdown or HTML. Both formats
// share one column set and keep the input order.
package report

import (
	"strconv"
	"strings"

	"github.com/amankumarsingh77/seo_audit/models"
)

const (
	Title           = "Audit Report"
	NullPlaceholder = "null"
)

type Row struct {
	Metric string
	Value  string
}

// Rows returns the fixed metric table for one issue.
func Rows(issue models.Issue) []Row {
	return []Row{
		{"Indexable", formatBool(issue.Indexable)},
		{"Meta Robots", formatOptional(issue.MetaRobots)},
		{"Core Web Vitals", formatString(issue.CoreWebVitals)},
		{"Schema JSON-LD", formatBool(len(issue.SchemaJSONLD) > 0)},
		{"Microdata Count", strconv.Itoa(issue.MicrodataCount)},
		{"RDFa Count", strconv.Itoa(issue.RDFaCount)},
		{"Mobile Friendly", formatBool(issue.MobileFriendly)},
		{"Viewport", formatOptional(issue.Viewport)},
		{"GSC Impressions", strconv.Itoa(issue.Impressions)},
		{"GSC Clicks", strconv.Itoa(issue.Clicks)},
		{"GSC CTR", strconv.FormatFloat(issue.CTR, 'f', -1, 64)},
	}
}

// Heading is the section title for an issue.
func Heading(issue models.Issue) string {
	if issue.IsError() {
		return "Audit failed"
	}
	return formatString(issue.URL)
}

func FlagLabels(issue models.Issue) string {
	labels := make([]string, len(issue.Flags))
	for i, f := range issue.Flags {
		labels[i] = string(f)
	}
	return strings.Join(labels, ", ")
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatOptional(s *string) string {
	if s == nil {
		return NullPlaceholder
	}
	return *s
}

func formatString(s string) string {
	if s == "" {
		return NullPlaceholder
	}
	return s
}
