// Package metrics holds the Prometheus collectors shared by the data-access
// layer and the services. Collectors register on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query status label values.
const (
	StatusOK         = "ok"
	StatusConstraint = "constraint"
	StatusError      = "error"
)

var (
	// DBQueriesTotal counts statements by leading keyword (SELECT, UPDATE, ...) and status.
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passkeeper_db_queries_total",
			Help: "Total number of SQL statements executed",
		},
		[]string{"statement", "status"},
	)

	// DBQueryDuration tracks statement latency by leading keyword.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "passkeeper_db_query_duration_seconds",
			Help:    "SQL statement latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"statement"},
	)

	// AccountEventsTotal counts account usage events (view, decrypt, reencrypt).
	AccountEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passkeeper_account_events_total",
			Help: "Total number of account usage events",
		},
		[]string{"event"},
	)
)
