// Package observer provides OTEL-based observability for extraction
// operations.
//
// Init wires OTLP HTTP exporters for traces and metrics; users export to
// any OTEL-compatible backend by setting standard OTEL env vars. Extraction
// entry points pick up the registered global providers automatically, so
// calling Init is optional — without it, spans and metrics are no-ops.
package observer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/kreuzberg-dev/kreuzberg-go/observer"

// Instruments holds the OTEL instruments used by extraction telemetry.
type Instruments struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	// Counters
	Extractions      metric.Int64Counter
	ExtractionErrors metric.Int64Counter
	CacheHits        metric.Int64Counter
	OCRRequests      metric.Int64Counter

	// Histograms
	ExtractionDuration metric.Float64Histogram
	DocumentBytes      metric.Int64Histogram
}

var (
	defaultOnce sync.Once
	defaultInst *Instruments
)

// Default returns the process-wide instruments bound to the global OTEL
// providers. Instruments obtained before Init registers real providers are
// delegating no-ops that start recording once Init runs, so callers can use
// Default unconditionally.
func Default() *Instruments {
	defaultOnce.Do(func() {
		inst, err := newInstruments()
		if err != nil {
			inst = &Instruments{Tracer: otel.Tracer(scopeName), Meter: otel.Meter(scopeName)}
		}
		defaultInst = inst
	})
	return defaultInst
}

// RecordExtraction counts one extraction call with its duration, input size
// and outcome. errKind is empty for a successful call.
func (in *Instruments) RecordExtraction(ctx context.Context, elapsed time.Duration, sizeBytes int64, mimeType, errKind string) {
	if in == nil || in.Extractions == nil {
		return
	}
	attrs := metric.WithAttributes(AttrMimeType.String(mimeType))
	in.Extractions.Add(ctx, 1, attrs)
	in.ExtractionDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	in.DocumentBytes.Record(ctx, sizeBytes, attrs)
	if errKind != "" {
		in.ExtractionErrors.Add(ctx, 1, metric.WithAttributes(
			AttrMimeType.String(mimeType),
			AttrErrorKind.String(errKind),
		))
	}
}

// RecordCacheHit counts a result served from the extraction cache.
func (in *Instruments) RecordCacheHit(ctx context.Context, mimeType string) {
	if in == nil || in.CacheHits == nil {
		return
	}
	in.CacheHits.Add(ctx, 1, metric.WithAttributes(
		AttrMimeType.String(mimeType),
		AttrCacheHit.Bool(true),
	))
}

// RecordOCRRequest counts one OCR backend invocation.
func (in *Instruments) RecordOCRRequest(ctx context.Context, backend string) {
	if in == nil || in.OCRRequests == nil {
		return
	}
	in.OCRRequests.Add(ctx, 1, metric.WithAttributes(AttrOCRBackend.String(backend)))
}

// Init sets up OTEL trace and metric providers with OTLP HTTP exporters.
// Configuration comes from standard OTEL env vars
// (OTEL_EXPORTER_OTLP_ENDPOINT, etc.). Returns a shutdown function that
// must be called on application exit.
func Init(ctx context.Context) (*Instruments, func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName("kreuzberg")),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, nil, err
	}

	// Trace provider
	traceExp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	// Metric provider
	metricExp, err := otlpmetrichttp.New(ctx)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			tp.Shutdown(ctx),
			mp.Shutdown(ctx),
		)
	}

	return Default(), shutdown, nil
}

func newInstruments() (*Instruments, error) {
	tracer := otel.Tracer(scopeName)
	meter := otel.Meter(scopeName)

	extractions, err := meter.Int64Counter("extraction.requests",
		metric.WithDescription("Document extraction count"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	extractionErrors, err := meter.Int64Counter("extraction.errors",
		metric.WithDescription("Failed extraction count"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter("extraction.cache.hits",
		metric.WithDescription("Result cache hit count"),
		metric.WithUnit("{hit}"))
	if err != nil {
		return nil, err
	}

	ocrRequests, err := meter.Int64Counter("ocr.requests",
		metric.WithDescription("OCR backend invocation count"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	extractionDuration, err := meter.Float64Histogram("extraction.duration",
		metric.WithDescription("Extraction duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	documentBytes, err := meter.Int64Histogram("extraction.document.bytes",
		metric.WithDescription("Input document size"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		Tracer:             tracer,
		Meter:              meter,
		Extractions:        extractions,
		ExtractionErrors:   extractionErrors,
		CacheHits:          cacheHits,
		OCRRequests:        ocrRequests,
		ExtractionDuration: extractionDuration,
		DocumentBytes:      documentBytes,
	}, nil
}
