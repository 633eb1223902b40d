package checks

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/amankumarsingh77/seo_audit/models"
)

// ParseIndexability reads the first meta robots tag. A page without one, or
// whose directive lacks "noindex", is indexable.
func ParseIndexability(url string, doc *goquery.Document) *models.IndexabilityResult {
	res := &models.IndexabilityResult{URL: url, Indexable: true}
	meta := doc.Find(`meta[name="robots"]`).First()
	if meta.Length() == 0 {
		return res
	}
	if content, ok := meta.Attr("content"); ok {
		res.MetaRobots = &content
		res.Indexable = !strings.Contains(strings.ToLower(content), "noindex")
	}
	return res
}

// ParseSchemaMarkup collects every JSON-LD block that decodes and counts
// microdata and RDFa scopes. Undecodable JSON-LD blocks are skipped.
func ParseSchemaMarkup(url string, doc *goquery.Document) *models.SchemaMarkupResult {
	res := &models.SchemaMarkupResult{URL: url, JSONLD: []any{}}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var block any
		if err := json.Unmarshal([]byte(raw), &block); err != nil {
			return
		}
		res.JSONLD = append(res.JSONLD, block)
	})
	res.MicrodataCount = doc.Find("[itemscope]").Length()
	res.RDFaCount = doc.Find("[typeof]").Length()
	return res
}

// ParseMobileFriendly treats a viewport meta tag as the mobile-friendly
// signal.
func ParseMobileFriendly(url string, doc *goquery.Document) *models.MobileFriendlyResult {
	res := &models.MobileFriendlyResult{URL: url}
	meta := doc.Find(`meta[name="viewport"]`).First()
	if meta.Length() == 0 {
		return res
	}
	res.MobileFriendly = true
	content := meta.AttrOr("content", "")
	res.Viewport = &content
	return res
}
