package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/otlptranslator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the OTel meter used by job workers. Readings are exposed on the
// Prometheus registry through the OTel exporter.
type Observability struct {
	serviceName   string
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	assessments   otelmetric.Int64Counter
}

// New exports with underscore-escaped names, so jobs.processed is scraped as
// jobs_processed_total. Options in opts are applied after that default.
func New(serviceName string, opts ...prometheus.Option) (*Observability, error) {
	opts = append([]prometheus.Option{
		prometheus.WithTranslationStrategy(otlptranslator.UnderscoreEscapingWithSuffixes),
	}, opts...)
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, err := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	if err != nil {
		return nil, err
	}

	jobDuration, err := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	assessments, err := meter.Int64Counter(
		"risk.assessments.scored",
		otelmetric.WithDescription("Risk assessments scored, by overall level"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		serviceName:   serviceName,
		meterProvider: provider,
		meter:         meter,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
		assessments:   assessments,
	}, nil
}

// StartSpan opens a span on the globally registered tracer provider.
func (o *Observability) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	tracer := "risk-workers"
	if o != nil && o.serviceName != "" {
		tracer = o.serviceName
	}
	return otel.Tracer(tracer).Start(ctx, name)
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordAssessment(ctx context.Context, source, level string) {
	if o == nil || o.assessments == nil {
		return
	}
	o.assessments.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("source", source),
		attribute.String("level", level),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
