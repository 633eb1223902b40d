package content

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/amankumarsingh77/seo_audit/internal/fetch"
	readability "github.com/go-shiori/go-readability"
	"github.com/reiver/go-porterstemmer"
	"golang.org/x/text/unicode/norm"
)

type Article struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Excerpt string `json:"excerpt"`
}

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reNonAlpha   = regexp.MustCompile(`[^a-z\s]`)
)

// Extract fetches pageURL and returns its readable main text.
func Extract(ctx context.Context, f fetch.Fetcher, pageURL string) (*Article, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", pageURL, err)
	}
	resp, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	article, err := readability.FromReader(bytes.NewReader(resp.Body), parsed)
	if err != nil {
		return nil, fmt.Errorf("extract article from %s: %w", pageURL, err)
	}

	text := article.TextContent
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content)); err == nil {
		doc.Find("script, style, figure, aside").Remove()
		text = doc.Text()
	}
	return &Article{
		URL:     pageURL,
		Title:   strings.TrimSpace(article.Title),
		Text:    strings.TrimSpace(reWhitespace.ReplaceAllString(text, " ")),
		Excerpt: article.Excerpt,
	}, nil
}

type QualityReport struct {
	Compliant bool     `json:"compliant"`
	Issues    []string `json:"issues"`
}

// CheckQuality reports copy shorter than minLength characters and required
// keywords that appear neither verbatim (case-insensitive) nor as a stem.
func CheckQuality(text string, minLength int, keywords []string) QualityReport {
	issues := []string{}
	if n := utf8.RuneCountInString(text); n < minLength {
		issues = append(issues, fmt.Sprintf("Content too short (length %d < %d)", n, minLength))
	}
	if len(keywords) > 0 {
		lower := strings.ToLower(text)
		stems := stemSet(text)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) || containsStems(stems, kw) {
				continue
			}
			issues = append(issues, "Missing required keyword: "+kw)
		}
	}
	return QualityReport{Compliant: len(issues) == 0, Issues: issues}
}

func normalize(text string) string {
	text = strings.ToLower(norm.NFC.String(text))
	text = reNonAlpha.ReplaceAllString(text, " ")
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

func stemTokens(text string) []string {
	var out []string
	for _, tok := range strings.Fields(normalize(text)) {
		out = append(out, stem(tok))
	}
	return out
}

func stem(token string) (s string) {
	defer func() {
		if recover() != nil {
			s = token
		}
	}()
	return porterstemmer.StemString(token)
}

func stemSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, s := range stemTokens(text) {
		set[s] = struct{}{}
	}
	return set
}

// containsStems is true when every word of kw stems to a word in the text.
func containsStems(set map[string]struct{}, kw string) bool {
	stems := stemTokens(kw)
	if len(stems) == 0 {
		return false
	}
	for _, s := range stems {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}
