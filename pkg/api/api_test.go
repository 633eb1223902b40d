package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amankumarsingh77/seo_audit/internal/archive"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/internal/tasks"
	"github.com/amankumarsingh77/seo_audit/models"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuditor struct {
	domain, page string
	full         int
}

func (s *stubAuditor) Correlate(_ context.Context, domain string) []models.Issue {
	s.domain = domain
	s.full++
	return []models.Issue{{
		URL:       "https://" + domain + "/",
		Indexable: true,
		Flags:     []models.IssueKind{models.IssueLowClicks},
	}}
}

func (s *stubAuditor) CorrelatePage(_ context.Context, domain, path string) []models.Issue {
	s.domain, s.page = domain, path
	return []models.Issue{{URL: "https://" + domain + path, Indexable: true}}
}

func newTestApp(t *testing.T) (*fiber.App, *stubAuditor, *tasks.MemoryBroker, *archive.MemoryArchive) {
	t.Helper()
	auditor := &stubAuditor{}
	registry := tasks.NewRegistry()
	registry.MustRegister(tasks.TaskBacklinkAgent, tasks.QueueBacklink, func(context.Context, json.RawMessage) (any, error) {
		return nil, nil
	})
	broker := tasks.NewMemoryBroker()
	client := tasks.NewClient(registry, broker, tasks.DefaultPolicy(), nil, logging.NewNop())
	reports := archive.NewMemoryArchive()
	reg := prometheus.NewRegistry()
	tasks.NewMetrics(reg)

	app := NewApp()
	NewAuditAPI(Options{
		Auditor:       auditor,
		Tasks:         client,
		Reports:       reports,
		Metrics:       promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		SettingsToken: "secrettoken",
		Logger:        logging.NewNop(),
	}).RegisterRoutes(app)
	return app, auditor, broker, reports
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthAndPlaceholders(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	_, body = do(t, app, httptest.NewRequest(http.MethodGet, "/backlinks", nil))
	assert.JSONEq(t, `{"backlinks":[]}`, body)

	_, body = do(t, app, httptest.NewRequest(http.MethodGet, "/agents", nil))
	assert.JSONEq(t, `{"agents":[{"name":"backlink.agent","queue":"backlink"}]}`, body)
}

func TestTokenAndSettings(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	_, body := do(t, app, httptest.NewRequest(http.MethodPost, "/token", nil))
	assert.JSONEq(t, `{"access_token":"secrettoken","token_type":"bearer"}`, body)

	resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/settings", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.Header.Set("Authorization", "Bearer secrettoken")
	resp, body = do(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"settings":{"user":"admin"}}`, body)
}

func TestAuditEndpoint(t *testing.T) {
	app, auditor, _, _ := newTestApp(t)
	resp, body := do(t, app, jsonRequest(http.MethodPost, "/api/audit", `{"domain":"example.com"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, auditor.full)

	var out struct {
		Issues []map[string]any `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.Len(t, out.Issues, 1)
	assert.Equal(t, "https://example.com/", out.Issues[0]["url"])
	assert.Equal(t, []any{"Low clicks"}, out.Issues[0]["issues"])

	resp, _ = do(t, app, jsonRequest(http.MethodPost, "/api/audit", `{"path":"/a"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAuditEndpointIgnoresPath(t *testing.T) {
	app, auditor, _, _ := newTestApp(t)
	resp, _ := do(t, app, jsonRequest(http.MethodPost, "/api/audit", `{"domain":"example.com","path":"/blog"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, auditor.full)
	assert.Empty(t, auditor.page)

	resp, _ = do(t, app, jsonRequest(http.MethodPost, "/api/audit/report", `{"domain":"example.com","path":"/blog"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, auditor.full)
	assert.Empty(t, auditor.page)
}

func TestPageAuditEndpoint(t *testing.T) {
	app, auditor, _, _ := newTestApp(t)
	resp, body := do(t, app, jsonRequest(http.MethodPost, "/api/audit/page", `{"domain":"example.com","path":"/blog"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/blog", auditor.page)
	assert.Zero(t, auditor.full)
	assert.Contains(t, body, "https://example.com/blog")

	resp, _ = do(t, app, jsonRequest(http.MethodPost, "/api/audit/page", `{"domain":"example.com"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestReportEndpointArchives(t *testing.T) {
	app, _, _, reports := newTestApp(t)
	resp, body := do(t, app, jsonRequest(http.MethodPost, "/api/audit/report?format=html", `{"domain":"example.com","path":"/blog"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<table")

	resp, body = do(t, app, jsonRequest(http.MethodPost, "/api/audit/report", `{"domain":"example.com"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "# Audit Report")

	resp, _ = do(t, app, jsonRequest(http.MethodPost, "/api/audit/report?format=pdf", `{"domain":"example.com"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	saved, err := reports.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	_, body = do(t, app, httptest.NewRequest(http.MethodGet, "/audits", nil))
	assert.Contains(t, body, `"domain":"example.com"`)
}

func TestEnqueueEndpoint(t *testing.T) {
	app, _, broker, _ := newTestApp(t)
	resp, body := do(t, app, jsonRequest(http.MethodPost, "/api/tasks/backlink.agent", `{}`))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Contains(t, body, `"queue":"backlink"`)
	n, err := broker.Len(context.Background(), tasks.QueueBacklink)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	resp, _ = do(t, app, jsonRequest(http.MethodPost, "/api/tasks/nope", `{}`))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, jsonRequest(http.MethodPost, "/api/tasks/backlink.agent", `{broken`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "seo_audit_tasks_running")
}
