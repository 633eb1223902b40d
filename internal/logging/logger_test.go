package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger(format, level string) (Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := NewWithSink(Config{Name: "audit", Level: level, Format: format}, zapcore.AddSync(buf))
	return l, buf
}

func TestJSONLogger_RedactsMessageAndFields(t *testing.T) {
	l, buf := newBufferLogger(FormatJSON, "info")

	l.Info("contact user@example.com about the audit",
		String("client_ip", "10.1.2.3"),
		Error(errors.New("rejected api_key=abc123")),
		Int("urls", 4),
	)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "audit", rec["logger"])
	assert.Equal(t, "contact [REDACTED EMAIL] about the audit", rec["message"])
	assert.Equal(t, "[REDACTED IP_ADDRESS]", rec["client_ip"])
	assert.Equal(t, "rejected [REDACTED API_KEY]", rec["error"])
	assert.EqualValues(t, 4, rec["urls"])
	assert.Contains(t, rec, "timestamp")
}

func TestJSONLogger_RedactsCompositeFields(t *testing.T) {
	l, buf := newBufferLogger(FormatJSON, "info")

	l.Info("recipients", Strings("emails", []string{"a@b.com", "plain"}))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, []any{"[REDACTED EMAIL]", "plain"}, rec["emails"])
}

func TestTextLogger_RedactsBeforeFormatting(t *testing.T) {
	l, buf := newBufferLogger(FormatText, "info")

	l.Warn("ssn 123-45-6789 seen", String("phone", "555.123.4567"))

	out := buf.String()
	assert.Contains(t, out, " - audit - WARN - ssn [REDACTED SSN] seen")
	assert.Contains(t, out, "[REDACTED PHONE]")
	assert.NotContains(t, out, "123-45-6789")
	assert.NotContains(t, out, "555.123.4567")
}

func TestTextLogger_LineLayout(t *testing.T) {
	l, buf := newBufferLogger(FormatText, "info")

	l.Named("tasks").With(String("queue", "audit")).Info("contact user@example.com")

	line := strings.TrimSpace(buf.String())
	parts := strings.SplitN(line, " - ", 4)
	require.Len(t, parts, 4)
	_, err := time.Parse(textTimeLayout, parts[0])
	require.NoError(t, err)
	assert.Equal(t, "audit.tasks", parts[1])
	assert.Equal(t, "INFO", parts[2])
	assert.True(t, strings.HasPrefix(parts[3], "contact [REDACTED EMAIL]"))
	assert.Contains(t, parts[3], `"queue": "audit"`)
	assert.NotContains(t, line, "user@example.com")
}

type host struct{ name string }

func (h *host) String() string { return h.name }

type brokenErr struct{}

func (*brokenErr) Error() string { panic("boom") }

func TestLogger_NilStringerDoesNotPanic(t *testing.T) {
	l, buf := newBufferLogger(FormatJSON, "info")

	var h *host
	require.NotPanics(t, func() {
		l.Info("checking target", zap.Stringer("host", h), zap.Error(&brokenErr{}))
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "<nil>", rec["host"])
	assert.Equal(t, "PANIC=boom", rec["error"])
}

func TestLogger_WithFieldsAreRedacted(t *testing.T) {
	l, buf := newBufferLogger(FormatJSON, "info")

	l.With(String("owner", "ops@example.com")).Named("tasks").Info("started")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "[REDACTED EMAIL]", rec["owner"])
	assert.Equal(t, "audit.tasks", rec["logger"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(FormatText, "warn")

	l.Info("skipped")
	l.Debug("skipped too")
	l.Error("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "kept")
}

func TestContextLogger(t *testing.T) {
	fallback := NewNop()
	assert.Equal(t, fallback, FromContext(context.Background(), fallback))

	l, _ := newBufferLogger(FormatJSON, "info")
	ctx := WithContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx, fallback))
	assert.NotNil(t, FromContext(context.Background(), nil))
}
