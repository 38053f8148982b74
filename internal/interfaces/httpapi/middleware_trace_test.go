package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestShouldTraceRequest(t *testing.T) {
	for _, path := range []string{"/healthz", "/health", "/livez", "/readyz", " /healthz "} {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for path %q", path)
		}
	}
	for _, path := range []string{"/v1/canonical/metrics", "/v1/clubs/club-1/gps/reports", "/", "/docs"} {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}

func TestRouteSpan_NamesSpanAfterPattern(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() {
		_ = provider.Shutdown(context.Background())
	}()

	ctx, span := provider.Tracer("test").Start(context.Background(), http.MethodGet)
	req := httptest.NewRequest(http.MethodGet, "/v1/clubs/club-1/players/p-9/game-model", nil).WithContext(ctx)

	const pattern = "GET /v1/clubs/{clubID}/players/{playerID}/game-model"
	called := false
	routeSpan(pattern, func(http.ResponseWriter, *http.Request) { called = true })(httptest.NewRecorder(), req)
	span.End()

	if !called {
		t.Fatalf("expected wrapped handler to run")
	}
	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected one span, got %d", len(ended))
	}
	if ended[0].Name() != pattern {
		t.Fatalf("unexpected span name: %q", ended[0].Name())
	}

	want := attribute.String("http.route", "/v1/clubs/{clubID}/players/{playerID}/game-model")
	found := false
	for _, attr := range ended[0].Attributes() {
		if attr == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected http.route attribute, got %v", ended[0].Attributes())
	}
}
