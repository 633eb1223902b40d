package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 10 << 20
)

// Fetcher retrieves a URL over HTTP. Non-2xx answers are returned as
// *TransportError alongside no response.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// TransportError covers every way a fetch can fail: connection problems,
// timeouts and non-success status codes (StatusCode set, Err nil).
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: bad response status: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type HttpClient struct {
	client   *http.Client
	headers  http.Header
	maxBytes int64
}

func NewHttpClient(cfg *config.HTTPConfig, logger logging.Logger) *HttpClient {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.ProxyEnabled {
		proxyUrl, err := url.Parse(cfg.ProxyUrl)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyUrl)
		} else {
			logger.Warn("failed to load the proxy, continuing without it", logging.String("proxy", cfg.ProxyUrl), logging.Error(err))
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	headers := http.Header{
		"User-Agent":      []string{cfg.UserAgent},
		"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"Accept-Language": []string{"en-US,en;q=0.5"},
	}
	return &HttpClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		headers:  headers,
		maxBytes: maxBytes,
	}
}

func (h *HttpClient) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for key, vals := range h.headers {
		for _, val := range vals {
			if val != "" {
				req.Header.Add(key, val)
			}
		}
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes))
	if err != nil {
		return nil, &TransportError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return &Response{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Document fetches rawURL and parses it as HTML.
func Document(ctx context.Context, f Fetcher, rawURL string) (*goquery.Document, error) {
	resp, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", rawURL, err)
	}
	return doc, nil
}
