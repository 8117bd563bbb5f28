// Package otel sets up OpenTelemetry tracing for the command line tools.
package otel

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/askiada/go-clusterphot/internal/platform/config"
)

// Config enables the OTLP/HTTP exporter.
type Config struct {
	Endpoint string `env:"CLUSTERSIM_OTEL_ENDPOINT"`
	Enabled  bool   `env:"CLUSTERSIM_OTEL_ENABLED" envDefault:"true"`
}

// Setup returns the tracer provider to hand to the pipeline and a shutdown
// function flushing pending spans.
//
// Tracing is opt-in: without an endpoint, or when disabled, Setup returns a
// no-op provider and registers nothing globally.
func Setup(ctx context.Context, serviceName string) (oteltrace.TracerProvider, func(context.Context) error, error) {
	noopShutdown := func(context.Context) error { return nil }

	var cfg Config

	err := config.ParseEnv(&cfg)
	if err != nil {
		return nil, noopShutdown, err
	}

	if !cfg.Enabled || cfg.Endpoint == "" {
		return noop.NewTracerProvider(), noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, noopShutdown, errors.Wrap(err, "unable to create exporter")
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, noopShutdown, errors.Wrap(err, "unable to create resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp, tp.Shutdown, nil
}
