package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const serviceName = "mlb-gamefeed-service"

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup builds a meter provider that always serves Prometheus and also pushes
// to OTLP when an endpoint is configured. Disabled telemetry still returns an
// in-memory Recorder so callers never branch on it.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("prometheus exporter: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("otlp exporter %s: %w", cfg.OtlpEndpoint, err)
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := serviceResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, nil, nil, err
	}
	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	otelInst, err := instrumentFactory(provider)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, nil, nil, err
	}

	return newRecorder(otelInst), promHandler, provider.Shutdown, nil
}

func serviceResource(ctx context.Context, name string) (*resource.Resource, error) {
	return resource.New(ctx, resource.WithAttributes(semconv.ServiceName(name)))
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

type otelInstruments struct {
	ctx               context.Context
	meter             metric.Meter
	requests          metric.Int64Counter
	requestLatencyMs  metric.Float64Histogram
	providerAttempts  metric.Int64Counter
	providerErrors    metric.Int64Counter
	providerLatencyMs metric.Float64Histogram
	rateLimitHits     metric.Int64Counter
	retryAfterMs      metric.Float64Histogram
	pollerCycles      metric.Int64Counter
	pollerErrors      metric.Int64Counter
	pollerLatencyMs   metric.Float64Histogram
	announcements     metric.Int64Counter
	pollerExits       metric.Int64Counter
	activePollers     metric.Int64UpDownCounter
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

// instrumentBuilder keeps the first creation error so construction reads as a list.
type instrumentBuilder struct {
	meter metric.Meter
	err   error
}

func (b *instrumentBuilder) counter(name, desc string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc))
	b.keep(name, err)
	return c
}

func (b *instrumentBuilder) gauge(name, desc string) metric.Int64UpDownCounter {
	g, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc))
	b.keep(name, err)
	return g
}

func (b *instrumentBuilder) millis(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("ms"))
	b.keep(name, err)
	return h
}

func (b *instrumentBuilder) keep(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create instrument %s: %w", name, err)
	}
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	b := &instrumentBuilder{meter: provider.Meter(serviceName)}
	inst := &otelInstruments{
		ctx:               context.Background(),
		meter:             b.meter,
		requests:          b.counter("http_requests_total", "HTTP requests served"),
		requestLatencyMs:  b.millis("http_request_duration_ms", "HTTP request latency"),
		providerAttempts:  b.counter("provider_attempts_total", "Live feed fetch attempts"),
		providerErrors:    b.counter("provider_errors_total", "Live feed fetch failures"),
		providerLatencyMs: b.millis("provider_duration_ms", "Live feed fetch latency"),
		rateLimitHits:     b.counter("provider_rate_limit_hits_total", "Fetches delayed by the upstream rate limit"),
		retryAfterMs:      b.millis("provider_retry_after_ms", "Wait imposed by the upstream rate limit"),
		pollerCycles:      b.counter("poller_cycles_total", "Poll cycles run across all games"),
		pollerErrors:      b.counter("poller_errors_total", "Poll cycles that failed to fetch"),
		pollerLatencyMs:   b.millis("poller_cycle_duration_ms", "Poll cycle latency"),
		announcements:     b.counter("announcements_total", "Announcements by delivery outcome"),
		pollerExits:       b.counter("poller_exits_total", "Poller terminations by reason"),
		activePollers:     b.gauge("pollers_active", "Games currently being polled"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return inst, nil
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
		attribute.Int(AttrStatus, status),
	}
	o.recordCounter(o.requests, 1, attrs...)
	o.recordHistogram(o.requestLatencyMs, float64(duration.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordProviderAttempt(provider string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrProvider, provider)}
	o.recordCounter(o.providerAttempts, 1, attrs...)
	o.recordHistogram(o.providerLatencyMs, float64(duration.Milliseconds()), attrs...)
	if err != nil {
		o.recordCounter(o.providerErrors, 1, attrs...)
	}
}

func (o *otelInstruments) recordRateLimit(provider string, retryAfter time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrProvider, provider)}
	o.recordCounter(o.rateLimitHits, 1, attrs...)
	if retryAfter > 0 {
		o.recordHistogram(o.retryAfterMs, float64(retryAfter.Milliseconds()), attrs...)
	}
}

func (o *otelInstruments) recordPoller(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.recordCounter(o.pollerCycles, 1)
	o.recordHistogram(o.pollerLatencyMs, float64(duration.Milliseconds()))
	if err != nil {
		o.recordCounter(o.pollerErrors, 1)
	}
}

func (o *otelInstruments) recordAnnouncement(outcome string) {
	if o == nil {
		return
	}
	o.recordCounter(o.announcements, 1, attribute.String(AttrOutcome, outcome))
}

func (o *otelInstruments) recordPollerExit(outcome string) {
	if o == nil {
		return
	}
	o.recordCounter(o.pollerExits, 1, attribute.String(AttrOutcome, outcome))
}

func (o *otelInstruments) recordActive(delta int64) {
	if o == nil {
		return
	}
	o.activePollers.Add(o.ctx, delta)
}

func (o *otelInstruments) recordCounter(counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	counter.Add(o.ctx, value, metric.WithAttributes(attrs...))
}

func (o *otelInstruments) recordHistogram(hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	hist.Record(o.ctx, value, metric.WithAttributes(attrs...))
}
