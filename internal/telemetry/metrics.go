package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/satriahrh/voxtag"

// Provider owns the meter provider and the Prometheus scrape handler
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	handler       http.Handler
	Metrics       *Metrics
}

// NewProvider wires an OpenTelemetry meter provider to a dedicated
// Prometheus registry and builds the application instruments on top of it.
func NewProvider() (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	metrics, err := NewMetrics(mp.Meter(meterName))
	if err != nil {
		_ = mp.Shutdown(context.Background())
		return nil, err
	}

	return &Provider{
		meterProvider: mp,
		handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Metrics:       metrics,
	}, nil
}

// Handler serves the Prometheus exposition format
func (p *Provider) Handler() http.Handler {
	return p.handler
}

// Shutdown flushes and stops the meter provider
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.meterProvider.Shutdown(ctx)
}

// Metrics holds the application instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	recordingsCreated metric.Int64Counter
	combines          metric.Int64Counter
	segmentsSkipped   metric.Int64Counter
	transcriptions    metric.Int64Counter
	combinedSeconds   metric.Float64Histogram
}

// NewMetrics creates the instruments on the given meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	recordingsCreated, err := meter.Int64Counter("voxtag_recordings_created",
		metric.WithDescription("Recordings accepted into a registry"))
	if err != nil {
		return nil, fmt.Errorf("failed to create recordings counter: %w", err)
	}

	combines, err := meter.Int64Counter("voxtag_combines",
		metric.WithDescription("Combine requests by result"))
	if err != nil {
		return nil, fmt.Errorf("failed to create combines counter: %w", err)
	}

	segmentsSkipped, err := meter.Int64Counter("voxtag_segments_skipped",
		metric.WithDescription("Segments dropped during combine because they were missing or unreadable"))
	if err != nil {
		return nil, fmt.Errorf("failed to create skipped counter: %w", err)
	}

	transcriptions, err := meter.Int64Counter("voxtag_transcriptions",
		metric.WithDescription("Transcription attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriptions counter: %w", err)
	}

	combinedSeconds, err := meter.Float64Histogram("voxtag_combined_duration_seconds",
		metric.WithDescription("Duration of combined recordings"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create combined duration histogram: %w", err)
	}

	return &Metrics{
		recordingsCreated: recordingsCreated,
		combines:          combines,
		segmentsSkipped:   segmentsSkipped,
		transcriptions:    transcriptions,
		combinedSeconds:   combinedSeconds,
	}, nil
}

func (m *Metrics) RecordingCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.recordingsCreated.Add(ctx, 1)
}

// CombineFinished records one combine request. result is "ok" or an error class.
func (m *Metrics) CombineFinished(ctx context.Context, result string, skipped int, seconds float64) {
	if m == nil {
		return
	}
	m.combines.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	if skipped > 0 {
		m.segmentsSkipped.Add(ctx, int64(skipped))
	}
	if result == "ok" {
		m.combinedSeconds.Record(ctx, seconds)
	}
}

// Transcription outcomes
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

func (m *Metrics) TranscriptionFinished(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.transcriptions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
