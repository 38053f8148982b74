package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		" error ": LevelError,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		if !ok || got != want {
			t.Fatalf("unexpected level for %q: got=%v ok=%v want=%v", raw, got, ok, want)
		}
	}
	if _, ok := ParseLevel("verbose"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}

func TestLogger_WritesKeyValueFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONWriter(LevelInfo, &buf).WithService("gps-gamemodel", "dev", "dev")

	logger.Debug("dropped")
	logger.Warn("row skipped", "report_id", "r1", "row_index", 4, "error", errors.New("no athlete name"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("unexpected line count: got=%d want=1 (%s)", len(lines), buf.String())
	}

	var entry map[string]any
	if err := sonic.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["msg"] != "row skipped" || entry["level"] != "WARN" {
		t.Fatalf("unexpected entry header: %v", entry)
	}
	if entry["report_id"] != "r1" || entry["row_index"] != float64(4) {
		t.Fatalf("unexpected fields: %v", entry)
	}
	if entry["error"] != "no athlete name" || entry["service"] != "gps-gamemodel" {
		t.Fatalf("unexpected error/service fields: %v", entry)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("noop")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected non-nil logger from nil receiver")
	}
}

func TestLogger_AcceptsZapFieldsAndTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONWriter(LevelDebug, &buf)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "game model recomputed", zap.Int("matches", 3), "player_id", "p1", "window", 90*time.Minute)

	var entry map[string]any
	if err := sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["matches"] != float64(3) || entry["player_id"] != "p1" {
		t.Fatalf("unexpected fields: %v", entry)
	}
	if entry["window"] != "1h30m0s" {
		t.Fatalf("expected stringer value, got %v", entry["window"])
	}
	if entry["trace_id"] != traceID.String() || entry["span_id"] != spanID.String() {
		t.Fatalf("missing trace fields: %v", entry)
	}
}
