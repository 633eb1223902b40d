package report

import (
	"strings"
	"testing"

	"github.com/amankumarsingh77/seo_audit/models"
	"github.com/stretchr/testify/assert"
)

func sampleIssues() []models.Issue {
	robots := "noindex"
	viewport := "width=device-width"
	return []models.Issue{
		{
			URL:            "https://a.test/",
			Indexable:      true,
			CoreWebVitals:  "Not implemented (requires external API or browser)",
			SchemaJSONLD:   []any{map[string]any{"@type": "WebPage"}},
			MobileFriendly: true,
			Viewport:       &viewport,
			Impressions:    12345,
			Clicks:         678,
			CTR:            5.49,
			Flags:          []models.IssueKind{},
		},
		{
			URL:        "https://a.test/draft",
			MetaRobots: &robots,
			Flags:      []models.IssueKind{models.IssueNotIndexable, models.IssueNoSchemaMarkup},
		},
	}
}

func TestRows_FixedColumnSet(t *testing.T) {
	rows := Rows(models.Issue{})
	metrics := make([]string, len(rows))
	for i, r := range rows {
		metrics[i] = r.Metric
	}
	assert.Equal(t, []string{
		"Indexable", "Meta Robots", "Core Web Vitals", "Schema JSON-LD", "Microdata Count",
		"RDFa Count", "Mobile Friendly", "Viewport", "GSC Impressions", "GSC Clicks", "GSC CTR",
	}, metrics)
	assert.Equal(t, NullPlaceholder, rows[1].Value)
	assert.Equal(t, NullPlaceholder, rows[7].Value)
}

func TestToMarkdown(t *testing.T) {
	md := ToMarkdown(sampleIssues())

	assert.True(t, strings.HasPrefix(md, "# Audit Report\n"))
	first := strings.Index(md, "## https://a.test/\n")
	second := strings.Index(md, "## https://a.test/draft\n")
	assert.True(t, first >= 0 && second > first, "sections keep input order")
	assert.Contains(t, md, "| Metric | Value |\n|---|---|\n")
	assert.Contains(t, md, "| GSC CTR | 5.49 |")
	assert.Contains(t, md, "| Meta Robots | noindex |")
	assert.Contains(t, md, "| Viewport | null |")
	assert.Contains(t, md, "**Issues:** Not indexable, No schema markup detected")
	assert.Equal(t, 1, strings.Count(md, "**Issues:**"))
}

func TestToMarkdown_EscapesCells(t *testing.T) {
	robots := "index|follow"
	md := ToMarkdown([]models.Issue{{URL: "https://a.test/", MetaRobots: &robots}})
	assert.Contains(t, md, `| Meta Robots | index\|follow |`)
}

func TestToMarkdown_ErrorRecord(t *testing.T) {
	md := ToMarkdown([]models.Issue{models.ErrorIssue("sitemap unreachable")})
	assert.Contains(t, md, "## Audit failed")
	assert.Contains(t, md, "**Error:** sitemap unreachable")
	assert.NotContains(t, md, "| Metric | Value |")
}

func TestToHTML(t *testing.T) {
	out := ToHTML(sampleIssues())

	assert.True(t, strings.HasPrefix(out, "<html><head><title>Audit Report</title>"))
	assert.Contains(t, out, "<h1>Audit Report</h1>")
	assert.Less(t, strings.Index(out, "<h2>https://a.test/</h2>"), strings.Index(out, "<h2>https://a.test/draft</h2>"))
	assert.Contains(t, out, "<tr><td>GSC Impressions</td><td>12345</td></tr>")
	assert.Contains(t, out, "<tr><td>Viewport</td><td>null</td></tr>")
	assert.Contains(t, out, "<p><strong>Issues:</strong> Not indexable, No schema markup detected</p>")
	assert.Equal(t, 2, strings.Count(out, "<table>"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</body></html>"))
}

func TestToHTML_EscapesValues(t *testing.T) {
	robots := `<script>alert(1)</script>`
	out := ToHTML([]models.Issue{{URL: "https://a.test/", MetaRobots: &robots}})
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderers_SameRowsAcrossFormats(t *testing.T) {
	issues := sampleIssues()
	md := ToMarkdown(issues)
	out := ToHTML(issues)
	for _, issue := range issues {
		for _, row := range Rows(issue) {
			assert.Contains(t, md, "| "+row.Metric+" | "+row.Value+" |")
			assert.Contains(t, out, "<tr><td>"+row.Metric+"</td><td>"+row.Value+"</td></tr>")
		}
	}
}

func TestRenderers_Empty(t *testing.T) {
	assert.Equal(t, "# Audit Report\n\n", ToMarkdown(nil))
	assert.Contains(t, ToHTML(nil), "<h1>Audit Report</h1>")
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("example.com", "/", sampleIssues())
	assert.Equal(t, "example.com", rec.Domain)
	assert.False(t, rec.Failed)
	assert.Contains(t, rec.Markdown, "# "+Title)
	assert.Contains(t, rec.HTML, "<table")

	failed := NewRecord("example.com", "", []models.Issue{models.ErrorIssue("boom")})
	assert.True(t, failed.Failed)
	assert.Contains(t, failed.Markdown, "boom")
}
