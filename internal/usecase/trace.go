package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("gps-gamemodel/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startUsecaseSpan opens a child span only when the caller is already traced.
// Empty attribute values are dropped.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}

	kept := attrs[:0]
	for _, attr := range attrs {
		if attr.Value.Type() == attribute.STRING && attr.Value.AsString() == "" {
			continue
		}
		kept = append(kept, attr)
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(kept...))
}

func clubAttr(clubID string) attribute.KeyValue {
	return attribute.String("gps.club_id", clubID)
}

func playerAttr(playerID string) attribute.KeyValue {
	return attribute.String("gps.player_id", playerID)
}

func reportAttr(reportID string) attribute.KeyValue {
	return attribute.String("gps.report_id", reportID)
}
