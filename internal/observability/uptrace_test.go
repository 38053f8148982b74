package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/config"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "gps-gamemodel-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	base := logging.NewNop()
	logger, shutdown, err := InitUptrace(cfg, base)
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if logger != base {
		t.Fatalf("expected the base logger back when uptrace is disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestShouldSkipLogExport(t *testing.T) {
	if !shouldSkipLogExport("http request", map[string]any{"path": "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if shouldSkipLogExport("http request", map[string]any{"path": "/v1/clubs/club-1/gps/reports"}) {
		t.Fatalf("did not expect report request log to be skipped")
	}
	if shouldSkipLogExport("game model recompute failed", map[string]any{"path": "/healthz"}) {
		t.Fatalf("did not expect non-access log to be skipped")
	}
}

func TestFieldValuesAndAttributes(t *testing.T) {
	values := fieldValues(
		[]zapcore.Field{{Key: "report_id", Type: zapcore.StringType, String: "report-1"}},
		[]zapcore.Field{
			{Key: "row_index", Type: zapcore.Int64Type, Integer: 3},
			{Key: "error", Type: zapcore.ErrorType, Interface: errors.New("not numeric")},
		},
	)

	attrs := buildOTelLogAttributes(values)
	if len(attrs) != 3 {
		t.Fatalf("unexpected attribute count: got=%d want=3", len(attrs))
	}
	byKey := make(map[string]otellog.Value, len(attrs))
	for _, a := range attrs {
		byKey[a.Key] = a.Value
	}
	if byKey["report_id"].AsString() != "report-1" {
		t.Fatalf("unexpected report_id attribute: %v", byKey["report_id"])
	}
	if byKey["row_index"].AsInt64() != 3 {
		t.Fatalf("unexpected row_index attribute: %v", byKey["row_index"])
	}
	if byKey["error"].AsString() != "not numeric" {
		t.Fatalf("unexpected error attribute: %v", byKey["error"])
	}
}

func TestToOTelLogValue(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"total_distance": 112.5,
		"matches":        []string{"match-1", "match-2"},
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 2 || items[0].Key != "matches" || items[0].Value.Kind() != otellog.KindSlice {
		t.Fatalf("unexpected map items: %+v", items)
	}

	if got := toOTelLogValue(90*time.Minute, 0).AsString(); got != "1h30m0s" {
		t.Fatalf("unexpected duration value: %q", got)
	}
}
