package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/ssehub/component"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoint, got %q", cfg.Endpoint)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.Tracing.SampleRate)
	}
	if cfg.Metrics.Interval != 15*time.Second {
		t.Errorf("expected interval 15s, got %v", cfg.Metrics.Interval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}

	bad := Config{Tracing: TracingConfig{Enabled: true, SampleRate: 2}}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for sample rate above 1 and missing endpoint")
	}
}

func TestConfig_DerivedProviderConfigs(t *testing.T) {
	cfg := Config{Endpoint: "otel:4318", Insecure: true}
	cfg.ApplyDefaults()

	tc := cfg.TracerConfig("ssehub", "1.2.3", "test")
	if tc.Endpoint != "otel:4318" || !tc.Insecure || tc.ServiceVersion != "1.2.3" {
		t.Errorf("unexpected tracer config %+v", tc)
	}
	mc := cfg.MeterConfig("ssehub", "1.2.3", "test")
	if mc.Interval != 15*time.Second || mc.Environment != "test" {
		t.Errorf("unexpected meter config %+v", mc)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); got != tc.want {
			t.Errorf("sampler(%v) = %s, want %s", tc.rate, got, tc.want)
		}
	}
	if got := sampler(0.5).Description(); got == "AlwaysOnSampler" || got == "AlwaysOffSampler" {
		t.Errorf("expected ratio sampler, got %s", got)
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("ssehub", "1.0.0", "test")
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	v, ok := res.Set().Value("service.name")
	if !ok || v.AsString() != "ssehub" {
		t.Errorf("expected service.name=ssehub, got %v", v)
	}
}

func TestStartOperation_RecordsSpanAndMetrics(t *testing.T) {
	rec := withRecorder(t)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	op := StartOperation(context.Background(), "ssehub", "POST /broadcast", "req-1", m)
	if OperationFromContext(op.Context()) != op {
		t.Error("expected operation to be retrievable from its context")
	}
	SetSpanAttribute(op.Context(), AttrSubscribers, 3)
	op.End("error", errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrRequestID].AsString() != "req-1" {
		t.Errorf("expected request id attribute, got %v", attrs)
	}
	if attrs[AttrSubscribers].AsInt64() != 3 {
		t.Errorf("expected subscribers attribute, got %v", attrs)
	}
	if attrs[AttrStatus].AsString() != "error" {
		t.Errorf("expected status attribute, got %v", attrs)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					got[md.Name] += dp.Value
				}
			}
		}
	}
	if got["http.request.total"] != 1 {
		t.Errorf("expected 1 request, got %d", got["http.request.total"])
	}
	if got["http.request.active"] != 0 {
		t.Errorf("expected no active requests, got %d", got["http.request.active"])
	}
	if got["http.error.total"] != 1 {
		t.Errorf("expected 1 error, got %d", got["http.error.total"])
	}
}

func TestStartOperation_NilMetrics(t *testing.T) {
	withRecorder(t)
	op := StartOperation(context.Background(), "ssehub", "GET /events", "", nil)
	op.End("ok", nil)
	if op.Duration() < 0 {
		t.Error("expected non-negative duration")
	}
}

func TestOperationFromContext_NotSet(t *testing.T) {
	if OperationFromContext(context.Background()) != nil {
		t.Error("expected nil when no operation is started")
	}
}

func TestSetSpanHelpers_NoSpan(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, errors.New("ignored"))
}

func TestSetSpanError(t *testing.T) {
	rec := withRecorder(t)
	ctx, span := StartSpan(context.Background(), SpanPublish)
	SetSpanError(ctx, errors.New("queue full"))
	span.End()

	if events := rec.Ended()[0].Events(); len(events) != 1 || events[0].Name != "exception" {
		t.Errorf("expected one exception event, got %v", events)
	}
}

func TestComponent_DisabledLifecycle(t *testing.T) {
	c := NewComponent(Config{}, "ssehub", "dev", "test")
	if c.Name() != "telemetry" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s", h.Status)
	}
	if d := c.Describe(); d.Details != "localhost:4318 tracing=false metrics=false" {
		t.Errorf("unexpected details %q", d.Details)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestComponent_EnabledLifecycle(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevMP := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	c := NewComponent(Config{
		Endpoint: "127.0.0.1:1",
		Insecure: true,
		Tracing:  TracingConfig{Enabled: true},
		Metrics:  MetricsConfig{Enabled: true, Interval: time.Hour},
	}, "ssehub", "dev", "test")

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.tp == nil || c.mp == nil {
		t.Fatal("expected both providers to be installed")
	}

	// Nothing listens on the endpoint; shutdown may report an export error
	// but must return within the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.Stop(ctx)
	if c.tp != nil || c.mp != nil {
		t.Error("expected providers to be released")
	}
}
