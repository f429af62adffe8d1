// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Pipeline Metrics
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_pipeline_stage_duration_seconds",
			Help:    "Duration of recommendation pipeline stages in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"}, // "merge", "features", "cluster", "candidates", "predict", "assemble"
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation pipeline runs",
		},
		[]string{"algorithm"},
	)

	RecommendationsEmpty = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_empty_results_total",
			Help: "Total number of pipeline runs producing an empty result",
		},
		[]string{"algorithm"},
	)

	RecommendationResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_result_size",
			Help:    "Number of recommendations returned per pipeline run",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"algorithm"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end duration of recommendation pipeline runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"algorithm"},
	)

	// Snapshot Metrics
	SnapshotRatings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_ratings",
			Help: "Number of community ratings in the current snapshot",
		},
	)

	SnapshotComics = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_comics",
			Help: "Number of catalog comics in the current snapshot",
		},
	)

	SnapshotLastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_last_refresh_timestamp",
			Help: "Unix timestamp of the last successful snapshot refresh",
		},
	)

	SnapshotRefreshErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_refresh_errors_total",
			Help: "Total number of failed snapshot refreshes",
		},
	)

	// Import Metrics
	ImportRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_records_total",
			Help: "Total number of records loaded by the CSV importer",
		},
		[]string{"source"}, // "ratings", "comics", "genres"
	)

	ImportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_errors_total",
			Help: "Total number of CSV import errors",
		},
		[]string{"source"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a rate limit rejection for an endpoint
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// ObservePipelineStage records the duration of one pipeline stage
func ObservePipelineStage(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// ObserveRecommendation records the outcome of one pipeline run
func ObserveRecommendation(algorithm string, results int, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(algorithm).Inc()
	RecommendationResultSize.WithLabelValues(algorithm).Observe(float64(results))
	RecommendationDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	if results == 0 {
		RecommendationsEmpty.WithLabelValues(algorithm).Inc()
	}
}

// RecordSnapshotRefresh records the outcome of a snapshot refresh
func RecordSnapshotRefresh(ratings, comics int, err error) {
	if err != nil {
		SnapshotRefreshErrors.Inc()
		return
	}
	SnapshotRatings.Set(float64(ratings))
	SnapshotComics.Set(float64(comics))
	SnapshotLastRefresh.Set(float64(time.Now().Unix()))
}

// RecordImport records records loaded from one CSV source
func RecordImport(source string, records int, err error) {
	if err != nil {
		ImportErrors.WithLabelValues(source).Inc()
		return
	}
	ImportRecordsTotal.WithLabelValues(source).Add(float64(records))
}
