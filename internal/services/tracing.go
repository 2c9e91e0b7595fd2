package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "birdfolio-backend/services"

// startSpan starts a span on the current global tracer provider, so a
// provider installed after package init is honoured.
func startSpan(ctx context.Context, name string, telegramID int64) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(tracerName).
		Start(ctx, name, trace.WithAttributes(attribute.Int64("telegram_id", telegramID)))
}

// endSpan records err on span (if any) and ends it
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
