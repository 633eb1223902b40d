package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/amankumarsingh77/seo_audit/internal/content"
	"github.com/amankumarsingh77/seo_audit/internal/discovery"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type recordingUpdater struct {
	updates map[string]string
}

func (r *recordingUpdater) Update(_ context.Context, url, c string) (string, error) {
	r.updates[url] = c
	return "Content at " + url + " updated successfully.", nil
}

type fakeAuditor struct{ issues []models.Issue }

func (f fakeAuditor) Correlate(context.Context, string) []models.Issue {
	return f.issues
}

func (f fakeAuditor) CorrelatePage(_ context.Context, domain, path string) []models.Issue {
	return []models.Issue{{URL: "https://" + domain + path}}
}

type memoryReports struct{ saved []*models.AuditReport }

func (m *memoryReports) Save(_ context.Context, rec *models.AuditReport) error {
	m.saved = append(m.saved, rec)
	return nil
}

type fakeDiscoverer struct{}

func (fakeDiscoverer) Aggregate(_ context.Context, domain string) (*discovery.Result, error) {
	return &discovery.Result{
		Domain:     domain,
		WorkingSet: models.NewWorkingSet("https://" + domain + "/", "https://" + domain + "/a"),
		NewURLs:    1,
	}, nil
}

func newAgentHarness(t *testing.T, a *Agents) (*Client, *MemoryBroker, *Registry) {
	t.Helper()
	r := NewRegistry()
	b := NewMemoryBroker()
	client := NewClient(r, b, DefaultPolicy(), nil, logging.NewNop())
	a.Enqueuer = client
	a.Logger = logging.NewNop()
	require.NoError(t, a.Register(r))
	return client, b, r
}

func drain(t *testing.T, b *MemoryBroker, r *Registry, q Queue) int {
	t.Helper()
	w := NewWorker("drain", q, b, r, DefaultPolicy(), nil, time.Millisecond, logging.NewNop())
	n := 0
	for {
		processed, err := w.ProcessOne(context.Background())
		require.NoError(t, err)
		if !processed {
			return n
		}
		n++
	}
}

func TestAgentsRegisterEveryTask(t *testing.T) {
	_, _, r := newAgentHarness(t, &Agents{})
	assert.Equal(t, []string{
		TaskAuditCorrelate, TaskAuditIngest, TaskAuditMonitor,
		TaskBacklinkAgent,
		TaskContentMonitor, TaskContentQuality, TaskContentRefresh, TaskContentSuggest, TaskContentUpdate,
		TaskDiscoveryAggregate,
	}, r.Names())
	q, err := r.QueueOf(TaskContentUpdate)
	require.NoError(t, err)
	assert.Equal(t, QueueContent, q)
}

func TestContentRefreshChainsThroughQueue(t *testing.T) {
	up := &recordingUpdater{updates: map[string]string{}}
	a := &Agents{
		Suggester:     content.StaticSuggester{Text: "fresh copy"},
		Updater:       up,
		RefreshURLs:   []string{"https://example.com/page1", "https://example.com/page2"},
		RefreshPrompt: content.DefaultPrompt,
	}
	client, b, r := newAgentHarness(t, a)

	_, err := client.Enqueue(context.Background(), TaskContentRefresh, RefreshPayload{})
	require.NoError(t, err)

	// refresh, 2 suggestions, 2 updates, 2 monitor records
	assert.Equal(t, 7, drain(t, b, r, QueueContent))
	assert.Equal(t, map[string]string{
		"https://example.com/page1": "fresh copy",
		"https://example.com/page2": "fresh copy",
	}, up.updates)
}

func TestSuggestWithoutURLDoesNotChain(t *testing.T) {
	a := &Agents{Suggester: content.StaticSuggester{Text: "idea"}}
	client, b, _ := newAgentHarness(t, a)

	got, err := client.Apply(context.Background(), TaskContentSuggest, SuggestPayload{Prompt: "topic"})
	require.NoError(t, err)
	assert.Equal(t, "idea", got)
	n, _ := b.Len(context.Background(), QueueContent)
	assert.Zero(t, n)
}

func TestAuditCorrelateArchivesReport(t *testing.T) {
	reports := &memoryReports{}
	a := &Agents{
		Auditor: fakeAuditor{issues: []models.Issue{{URL: "https://example.com/", Indexable: true, Flags: []models.IssueKind{}}}},
		Reports: reports,
	}
	client, b, r := newAgentHarness(t, a)
	task, err := client.Enqueue(context.Background(), TaskAuditCorrelate, DomainPayload{Domain: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, drain(t, b, r, QueueAudit))

	require.Len(t, reports.saved, 1)
	assert.Equal(t, "example.com", reports.saved[0].Domain)
	assert.Equal(t, task.ID, reports.saved[0].TaskID)
	assert.Contains(t, reports.saved[0].Markdown, "https://example.com/")
}

func TestAgentsLogWithTaskScope(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := logging.NewWithSink(logging.Config{Format: logging.FormatJSON}, zapcore.AddSync(buf))
	a := &Agents{Logger: logging.NewNop()}
	r := NewRegistry()
	require.NoError(t, a.Register(r))
	client := NewClient(r, NewMemoryBroker(), DefaultPolicy(), nil, sink)

	_, err := client.Apply(context.Background(), TaskBacklinkAgent, nil)
	require.NoError(t, err)

	var rec map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		if m["message"] == "backlink agent task executed" {
			rec = m
		}
	}
	require.NotNil(t, rec)
	assert.Equal(t, TaskBacklinkAgent, rec["task"])
	assert.NotEmpty(t, rec["task_id"])
	assert.EqualValues(t, 1, rec["attempt"])
}

func TestAuditCorrelateSinglePage(t *testing.T) {
	reports := &memoryReports{}
	client, _, _ := newAgentHarness(t, &Agents{Auditor: fakeAuditor{}, Reports: reports})
	got, err := client.Apply(context.Background(), TaskAuditCorrelate, DomainPayload{Domain: "example.com", Page: "/blog"})
	require.NoError(t, err)
	assert.Equal(t, []models.Issue{{URL: "https://example.com/blog"}}, got)
	require.Len(t, reports.saved, 1)
	assert.Equal(t, "/blog", reports.saved[0].Path)
}

func TestDiscoveryAndBacklinkAgents(t *testing.T) {
	client, _, _ := newAgentHarness(t, &Agents{Discoverer: fakeDiscoverer{}})
	got, err := client.Apply(context.Background(), TaskDiscoveryAggregate, DomainPayload{Domain: "example.com"})
	require.NoError(t, err)
	summary := got.(DiscoverySummary)
	assert.Equal(t, []string{"https://example.com/", "https://example.com/a"}, summary.URLs)
	assert.Equal(t, 1, summary.NewURLs)

	got, err = client.Apply(context.Background(), TaskBacklinkAgent, nil)
	require.NoError(t, err)
	assert.Equal(t, "Backlink agent task executed", got)
}

func TestQualityAgentUsesDefaults(t *testing.T) {
	client, _, _ := newAgentHarness(t, &Agents{MinLength: 10, Keywords: []string{"audit"}})
	got, err := client.Apply(context.Background(), TaskContentQuality, QualityPayload{Content: "A short audit"})
	require.NoError(t, err)
	report := got.(content.QualityReport)
	assert.True(t, report.Compliant)
}

func TestAgentsRejectMissingFields(t *testing.T) {
	client, _, _ := newAgentHarness(t, &Agents{})
	client.policy = Policy{MaxAttempts: 1}
	for name, payload := range map[string]any{
		TaskAuditMonitor:   URLsPayload{},
		TaskAuditIngest:    IngestPayload{},
		TaskContentUpdate:  UpdatePayload{},
		TaskContentQuality: QualityPayload{},
	} {
		_, err := client.Apply(context.Background(), name, payload)
		assert.ErrorIs(t, err, errMissingField, name)
	}
}

func TestMonitorUpdateAgent(t *testing.T) {
	client, _, _ := newAgentHarness(t, &Agents{})
	raw, _ := json.Marshal(MonitorUpdatePayload{URL: "u", Status: "success", Feedback: "ok"})
	got, err := client.Apply(context.Background(), TaskContentMonitor, json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, "Monitoring complete for u: status=success, feedback=ok", got)
}
