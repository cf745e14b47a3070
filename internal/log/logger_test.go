package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finboard/internal/core"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Level: slog.LevelDebug, Output: buf, Component: ComponentBoard})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerStampsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent(ComponentCache)
	l.Info("hello", "k", 1)

	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=cache") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))

	sl.LogPeriodSelected(context.Background(), core.Period{Year: 2024, Month: time.March}, 7, "rev-1", 9)
	out := buf.String()
	for _, want := range []string{"period=2024-03", "seed=7", "revision=rev-1", "records=9", "operation=select"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}

	buf.Reset()
	sl.LogError(context.Background(), "save failed", errors.New("disk full"), ComponentStorage, OpSave, ErrorTypeDatabase, nil)
	if !strings.Contains(buf.String(), "error_type=database_error") || !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("unexpected error output %q", buf.String())
	}

	buf.Reset()
	r := httptest.NewRequest(http.MethodGet, "/api/metrics?year=2024", nil)
	sl.LogHTTPEnd(context.Background(), r, http.StatusBadRequest, 3, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "status_code=400") {
		t.Fatalf("unexpected http output %q", buf.String())
	}
}

func TestNewContextAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf).With(FieldRequestID, "abc")

	ctx := NewContext(context.Background(), logger)
	FromContext(ctx).Info("inside")

	if FromContext(ctx) != logger || !strings.Contains(buf.String(), "request_id=abc") {
		t.Fatalf("request id not propagated: %q", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}
}
