package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the pipeline's metric instruments.
type AppMetrics struct {
	SearchRequestsTotal    metric.Int64Counter
	SearchDurationSeconds  metric.Float64Histogram
	StageDegradationsTotal metric.Int64Counter
	StreamEventsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments exactly once,
// using the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("VeteranFacilityAgent")
		var err error
		m := &AppMetrics{}

		m.SearchRequestsTotal, err = meter.Int64Counter(
			"facility_search_requests_total",
			metric.WithDescription("Total number of facility search requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create facility_search_requests_total: %v", err)
		}

		m.SearchDurationSeconds, err = meter.Float64Histogram(
			"facility_search_duration_seconds",
			metric.WithDescription("Duration of facility search requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create facility_search_duration_seconds: %v", err)
		}

		m.StageDegradationsTotal, err = meter.Int64Counter(
			"pipeline_stage_degradations_total",
			metric.WithDescription("Total number of pipeline stages that returned a degraded result"),
			metric.WithUnit("{stage}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create pipeline_stage_degradations_total: %v", err)
		}

		m.StreamEventsTotal, err = meter.Int64Counter(
			"stream_events_emitted_total",
			metric.WithDescription("Total number of events emitted over search streams"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create stream_events_emitted_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the initialized metrics, or nil when InitAppMetrics has not run.
func Get() *AppMetrics {
	return appMetrics
}
