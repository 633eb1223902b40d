package discovery

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/amankumarsingh77/seo_audit/internal/fetch"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/temoto/robotstxt"
)

const (
	robotsPath   = "/robots.txt"
	sitemapPath  = "/sitemap.xml"
	manifestPath = "/LLMs.txt"
)

// Getter is satisfied by *Collector.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// Lister returns the raw URL strings a source advertises for a domain.
type Lister interface {
	List(ctx context.Context, base string) ([]string, error)
}

type Robots struct {
	URL      string
	Raw      string
	Sitemaps []string
	data     *robotstxt.RobotsData
}

// Allowed reports whether agent may fetch rawURL. Unparseable robots files
// allow everything.
func (r *Robots) Allowed(rawURL, agent string) bool {
	if r == nil || r.data == nil {
		return true
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.RequestURI()
	}
	return r.data.TestAgent(path, agent)
}

type RobotsSource struct {
	getter Getter
	logger logging.Logger
}

func NewRobotsSource(g Getter, logger logging.Logger) *RobotsSource {
	return &RobotsSource{getter: g, logger: logger}
}

// Load fails on any non-success status as well as on transport errors.
func (s *RobotsSource) Load(ctx context.Context, base string) (*Robots, error) {
	target := base + robotsPath
	body, err := getOK(ctx, s.getter, target)
	if err != nil {
		return nil, err
	}
	robots := &Robots{URL: target, Raw: string(body)}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		s.logger.Debug("robots.txt unparseable, treating as allow-all", logging.String("url", target), logging.Error(err))
		return robots, nil
	}
	robots.data = data
	robots.Sitemaps = data.Sitemaps
	return robots, nil
}

type SitemapSource struct {
	getter Getter
	logger logging.Logger
}

func NewSitemapSource(g Getter, logger logging.Logger) *SitemapSource {
	return &SitemapSource{getter: g, logger: logger}
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// sitemapDocument accepts both <urlset> and <sitemapindex> roots.
type sitemapDocument struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

// List returns every <loc> in the sitemap. Child sitemaps of an index are
// listed as-is, not followed.
func (s *SitemapSource) List(ctx context.Context, base string) ([]string, error) {
	target := base + sitemapPath
	body, err := getOK(ctx, s.getter, target)
	if err != nil {
		return nil, err
	}
	return ParseSitemap(body, s.logger), nil
}

// ParseSitemap never fails: malformed XML yields no URLs.
func ParseSitemap(body []byte, logger logging.Logger) []string {
	var doc sitemapDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		logger.Debug("sitemap unparseable, no urls taken", logging.Error(err))
		return nil
	}
	locs := make([]string, 0, len(doc.URLs)+len(doc.Sitemaps))
	for _, entry := range append(doc.URLs, doc.Sitemaps...) {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs
}

type ManifestSource struct {
	getter Getter
	logger logging.Logger
}

func NewManifestSource(g Getter, logger logging.Logger) *ManifestSource {
	return &ManifestSource{getter: g, logger: logger}
}

// List treats a non-success status as an empty manifest. Transport errors
// still propagate.
func (s *ManifestSource) List(ctx context.Context, base string) ([]string, error) {
	target := base + manifestPath
	resp, err := s.getter.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		s.logger.Debug("no manifest published", logging.String("url", target), logging.Int("status", resp.StatusCode))
		return []string{}, nil
	}
	return ParseManifest(resp.Body), nil
}

func ParseManifest(body []byte) []string {
	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	return urls
}

func getOK(ctx context.Context, g Getter, target string) ([]byte, error) {
	resp, err := g.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &fetch.TransportError{URL: target, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}
