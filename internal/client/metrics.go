package client

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names following OpenTelemetry semantic conventions.
const (
	RequestCounterName       = "codedx_client_requests_total"
	RequestDurationName      = "codedx_client_request_duration_seconds"
	PollIterationCounterName = "codedx_client_poll_iterations_total"
)

// Attribute keys.
const (
	AttrOperation  = "operation"
	AttrMethod     = "method"
	AttrStatusCode = "status_code"
	AttrErrorKind  = "error_kind"
	AttrJobStatus  = "job_status"
)

const meterName = "codedx-client/client"

// clientMetrics records per-request and per-poll measurements.
type clientMetrics struct {
	requests        metric.Int64Counter
	requestDuration metric.Float64Histogram
	pollIterations  metric.Int64Counter
}

func newClientMetrics(provider metric.MeterProvider) (*clientMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	requests, err := meter.Int64Counter(
		RequestCounterName,
		metric.WithDescription("Total number of Code Dx API requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		RequestDurationName,
		metric.WithDescription("Duration of Code Dx API requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300),
	)
	if err != nil {
		return nil, err
	}

	pollIterations, err := meter.Int64Counter(
		PollIterationCounterName,
		metric.WithDescription("Total number of job status checks that were not yet ready"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	return &clientMetrics{
		requests:        requests,
		requestDuration: requestDuration,
		pollIterations:  pollIterations,
	}, nil
}

// recordRequest records one finished exchange. statusCode is 0 when no response arrived.
func (m *clientMetrics) recordRequest(
	ctx context.Context,
	operation, method string,
	statusCode int,
	duration time.Duration,
	err error,
) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrOperation, operation),
		attribute.String(AttrMethod, method),
		attribute.Int(AttrStatusCode, statusCode),
	}
	if k, ok := kindOf(err); ok {
		attrs = append(attrs, attribute.String(AttrErrorKind, k.String()))
	}
	opt := metric.WithAttributes(attrs...)
	m.requests.Add(ctx, 1, opt)
	m.requestDuration.Record(ctx, duration.Seconds(), opt)
}

func (m *clientMetrics) recordPollIteration(ctx context.Context, status JobStatus) {
	m.pollIterations.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrJobStatus, status.String())))
}
