package observer

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt64(t *testing.T, metrics map[string]metricdata.Metrics, name string) int64 {
	t.Helper()
	m, ok := metrics[name]
	if !ok {
		t.Fatalf("metric %s not recorded", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s is %T, want Sum[int64]", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// The default instruments bind to the global meter provider once per
// process, so a single test owns the reader and exercises every record
// method against it.
func TestRecordMethodsEmitMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	ctx := context.Background()

	Default().RecordExtraction(ctx, 5*time.Millisecond, 128, "text/plain", "")
	Default().RecordExtraction(ctx, time.Millisecond, 64, "application/pdf", "parsing")
	Default().RecordCacheHit(ctx, "application/pdf")
	Default().RecordOCRRequest(ctx, "tesseract")

	metrics := collect(t, reader)
	if got := sumInt64(t, metrics, "extraction.requests"); got != 2 {
		t.Errorf("extraction.requests = %d, want 2", got)
	}
	if got := sumInt64(t, metrics, "extraction.errors"); got != 1 {
		t.Errorf("extraction.errors = %d, want 1", got)
	}
	if got := sumInt64(t, metrics, "extraction.cache.hits"); got != 1 {
		t.Errorf("extraction.cache.hits = %d, want 1", got)
	}
	if got := sumInt64(t, metrics, "ocr.requests"); got != 1 {
		t.Errorf("ocr.requests = %d, want 1", got)
	}
	for _, name := range []string{"extraction.duration", "extraction.document.bytes"} {
		if _, ok := metrics[name]; !ok {
			t.Errorf("%s not recorded", name)
		}
	}
}

func TestRecordMethodsAreSafeOnUninitializedInstruments(t *testing.T) {
	var in *Instruments
	in.RecordExtraction(context.Background(), time.Millisecond, 1, "text/plain", "")
	in.RecordCacheHit(context.Background(), "text/plain")
	in.RecordOCRRequest(context.Background(), "tesseract")
}
