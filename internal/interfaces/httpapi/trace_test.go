package httpapi

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_OnlyHandlersUnderTracedRequests(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	defer func() {
		_ = provider.Shutdown(context.Background())
	}()

	_, untraced := startSpan(context.Background(), "httpapi.Handler.GetGameModel")
	untraced.End()

	ctx, root := provider.Tracer("test").Start(context.Background(), "GET")
	_, helper := startSpan(ctx, "httpapi.writeJSON")
	helper.End()
	_, handler := startSpan(ctx, "httpapi.Handler.GetGameModel")
	handler.End()
	root.End()

	names := make([]string, 0, 2)
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	if len(names) != 2 || names[0] != "httpapi.Handler.GetGameModel" || names[1] != "GET" {
		t.Fatalf("unexpected recorded spans: %v", names)
	}
}
