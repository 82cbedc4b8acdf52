package tracing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

var Tracer trace.Tracer

// ShutdownFunc сбрасывает накопленные спаны и останавливает провайдер
type ShutdownFunc func(ctx context.Context) error

// InitTracing инициализирует OpenTelemetry трейсинг.
// Пустой endpoint включает noop экспортер для локальной разработки.
func InitTracing(serviceName, endpoint string, log zerolog.Logger) (ShutdownFunc, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String("1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdktrace.SpanExporter

	if endpoint != "" {
		exporter, err = otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(endpoint),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.Info().Str("endpoint", endpoint).Msg("OpenTelemetry настроен для OTLP экспорта")
	} else {
		log.Info().Msg("OpenTelemetry настроен без экспорта (задайте OTEL_ENDPOINT)")
		exporter = &noopExporter{}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	Tracer = otel.Tracer(serviceName)

	log.Info().Str("service", serviceName).Msg("OpenTelemetry инициализирован")
	return tp.Shutdown, nil
}

// noopExporter - пустой экспортер для локальной разработки
type noopExporter struct{}

func (e *noopExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (e *noopExporter) Shutdown(ctx context.Context) error {
	return nil
}
