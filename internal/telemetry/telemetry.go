// Package telemetry installs the OpenTelemetry tracer provider used by the
// service spans.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"birdfolio-backend/internal/config"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// ShutdownFunc flushes pending spans and stops the provider
type ShutdownFunc func(ctx context.Context) error

// Setup installs the global tracer provider selected by cfg. With the none
// exporter the global no-op provider is left in place.
func Setup(cfg config.TracingConfig) (ShutdownFunc, error) {
	provider, err := newProvider(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return func(context.Context) error { return nil }, nil
	}

	otel.SetTracerProvider(provider)
	log.Info().Str("exporter", cfg.Exporter).Msg("Tracing enabled")
	return provider.Shutdown, nil
}

func newProvider(cfg config.TracingConfig, w io.Writer) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case "", ExporterNone:
		return nil, nil
	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", cfg.Exporter)
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
