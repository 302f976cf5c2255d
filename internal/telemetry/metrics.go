/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry holds Prometheus metrics, the tracing setup and the
// HTTP instrumentation middleware.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pressqueue"

var (
	// APIRequestsTotal counts HTTP requests by method, route and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total HTTP API requests.",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration observes HTTP request latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "HTTP API request duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections tracks in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "api_active_connections",
		Help:      "In-flight HTTP API requests.",
	})

	// QueueAttemptsTotal counts queue-post attempts, by outcome.
	QueueAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queue_attempts_total",
		Help:      "Queue-post attempts by outcome (queued, conflict, not_found, error).",
	}, []string{"outcome"})

	// SlotResolveDuration observes availability resolution latency,
	// store reads included.
	SlotResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "slot_resolve_duration_seconds",
		Help:      "Duration of slot availability resolution.",
		Buckets:   prometheus.DefBuckets,
	})

	// PublisherRunsTotal counts publisher loop ticks.
	PublisherRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publisher_runs_total",
		Help:      "Publisher loop executions.",
	})

	// PublishedPostsTotal counts posts flipped to published.
	PublishedPostsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "published_posts_total",
		Help:      "Posts published by the publisher loop.",
	})

	// PublisherErrorsTotal counts failed publisher ticks.
	PublisherErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publisher_errors_total",
		Help:      "Publisher loop failures.",
	})

	// DBOperationDuration observes GORM operation latency by kind and table.
	DBOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "db_operation_duration_seconds",
		Help:      "Database operation duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// DBErrorsTotal counts failed database operations.
	DBErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "db_errors_total",
		Help:      "Database operation failures.",
	}, []string{"operation"})

	// DBConnectionsActive tracks open connections in the pool.
	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_connections_active",
		Help:      "Open database connections.",
	})

	// LeaderElectionStatus is 1 while this instance holds leadership.
	LeaderElectionStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "leader_election_status",
		Help:      "1 when this instance is the publisher leader.",
	}, []string{"instance_id"})

	// LeaderElectionChanges counts leadership transitions.
	LeaderElectionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leader_election_changes_total",
		Help:      "Leadership transitions by kind (acquired, lost).",
	}, []string{"instance_id", "change"})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
