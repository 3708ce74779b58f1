// Package telemetry wires the OTLP exporters. Everything is off unless
// OTEL_EXPORTER_OTLP_ENDPOINT is set, in which case traces and logs ship over
// OTLP/HTTP and the returned slog handler bridges application logs in.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Setup configures the global tracer provider and returns a slog handler for
// the log bridge. Both returns are nil when no endpoint is configured; the
// shutdown func is always safe to call.
func Setup(ctx context.Context, service string) (func(context.Context) error, slog.Handler, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return func(context.Context) error { return nil }, nil, nil
	}

	res := resource.NewSchemaless(attribute.String("service.name", service))

	traceExp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	logExp, err := otlploghttp.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		sdklog.WithResource(res),
	)

	shutdown := func(ctx context.Context) error {
		return errors.Join(tracerProvider.Shutdown(ctx), loggerProvider.Shutdown(ctx))
	}
	handler := otelslog.NewHandler(service, otelslog.WithLoggerProvider(loggerProvider))
	return shutdown, handler, nil
}
