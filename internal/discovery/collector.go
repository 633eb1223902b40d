package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/amankumarsingh77/seo_audit/internal/fetch"
	"github.com/gocolly/colly"
)

var errNoResponse = errors.New("no response received")

// Collector fetches discovery documents. Unlike fetch.HttpClient it hands
// back non-success responses so each source can decide what a status means.
type Collector struct {
	base *colly.Collector
}

func NewCollector(cfg *config.HTTPConfig) *Collector {
	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	if cfg.MaxBodyBytes > 0 {
		c.MaxBodySize = int(cfg.MaxBodyBytes)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c.SetRequestTimeout(timeout)
	if cfg.ProxyEnabled {
		if proxyUrl, err := url.Parse(cfg.ProxyUrl); err == nil {
			c.WithTransport(&http.Transport{Proxy: http.ProxyURL(proxyUrl)})
		}
	}
	return &Collector{base: c}
}

// Get returns the response whatever its status; only transport failures are
// reported as errors.
func (c *Collector) Get(ctx context.Context, rawURL string) (*fetch.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &fetch.TransportError{URL: rawURL, Err: err}
	}
	col := c.base.Clone()

	var resp *fetch.Response
	col.OnResponse(func(r *colly.Response) {
		header := http.Header{}
		if r.Headers != nil {
			header = *r.Headers
		}
		resp = &fetch.Response{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Header:     header,
			Body:       r.Body,
		}
	})
	if err := col.Visit(rawURL); err != nil {
		return nil, &fetch.TransportError{URL: rawURL, Err: err}
	}
	if resp == nil {
		return nil, &fetch.TransportError{URL: rawURL, Err: errNoResponse}
	}
	return resp, nil
}
